package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// Create 创建课程（管理员）
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, course)
}

// Get 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, course)
}

// Update 更新课程
// PATCH /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, course)
}

// Delete 删除课程（管理员，有选课或节次时拒绝）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// Enroll 选课（管理员代操作）
// POST /api/v1/enrollments
func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.courseSvc.Enroll(c.Request.Context(), actor, &req); err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, nil)
}

// List 课程列表，按角色过滤
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, courses)
}
