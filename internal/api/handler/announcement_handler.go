package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// AnnouncementHandler 公告 HTTP 处理器
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// Create 发布公告
// POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ann, err := h.announcementSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, ann)
}

// List 可见公告列表，置顶优先
// GET /api/v1/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.announcementSvc.List(c.Request.Context(), actor)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, list)
}

// MarkRead 标记公告已读
// POST /api/v1/announcements/:id/read
func (h *AnnouncementHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.announcementSvc.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
