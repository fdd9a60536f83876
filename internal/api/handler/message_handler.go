package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// MessageHandler 私信 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送私信
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msg, err := h.messageSvc.Send(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, msg)
}

// Inbox 收件箱
// GET /api/v1/messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.messageSvc.Inbox(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Sent 已发送
// GET /api/v1/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.messageSvc.Sent(c.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Read 查看私信，收件人打开即置已读
// GET /api/v1/messages/:id
func (h *MessageHandler) Read(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	msg, err := h.messageSvc.Read(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, msg)
}
