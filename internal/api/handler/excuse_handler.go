package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// ExcuseHandler 请假模块 HTTP 处理器
type ExcuseHandler struct {
	excuseSvc service.ExcuseService
}

// NewExcuseHandler 创建 ExcuseHandler
func NewExcuseHandler(excuseSvc service.ExcuseService) *ExcuseHandler {
	return &ExcuseHandler{excuseSvc: excuseSvc}
}

// Create 学生提交请假申请
// POST /api/v1/sessions/:id/excuses
func (h *ExcuseHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateExcuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	excuse, err := h.excuseSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, excuse)
}

// Resolve 审批请假
// PATCH /api/v1/excuses/:id
func (h *ExcuseHandler) Resolve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ResolveExcuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	excuse, err := h.excuseSvc.Resolve(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, excuse)
}

// Get 请假单详情
// GET /api/v1/excuses/:id
func (h *ExcuseHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	excuse, err := h.excuseSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, excuse)
}

// List 课程维度请假列表（教师/管理员）
// GET /api/v1/excuses
func (h *ExcuseHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ExcuseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.excuseSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListMine 本人请假记录
// GET /api/v1/excuses/my
func (h *ExcuseHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ExcuseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.excuseSvc.ListMine(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
