package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// AppealHandler 申诉模块 HTTP 处理器
type AppealHandler struct {
	appealSvc service.AppealService
}

// NewAppealHandler 创建 AppealHandler
func NewAppealHandler(appealSvc service.AppealService) *AppealHandler {
	return &AppealHandler{appealSvc: appealSvc}
}

// Create 学生对考勤记录提出申诉
// POST /api/v1/attendance/:id/appeals
func (h *AppealHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appeal, err := h.appealSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, appeal)
}

// Resolve 处理申诉
// PATCH /api/v1/appeals/:id
func (h *AppealHandler) Resolve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ResolveAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appeal, err := h.appealSvc.Resolve(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, appeal)
}

// Get 申诉详情
// GET /api/v1/appeals/:id
func (h *AppealHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	appeal, err := h.appealSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, appeal)
}

// List 课程维度申诉列表（教师/管理员）
// GET /api/v1/appeals
func (h *AppealHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AppealListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.appealSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListMine 本人申诉记录
// GET /api/v1/appeals/my
func (h *AppealHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AppealListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.appealSvc.ListMine(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
