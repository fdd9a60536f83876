package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// SessionHandler 节次模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc  service.SessionService
	calendarSvc service.CalendarService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService, calendarSvc service.CalendarService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, calendarSvc: calendarSvc}
}

// Create 手动创建单个节次
// POST /api/v1/courses/:id/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, session)
}

// List 课程节次列表
// GET /api/v1/courses/:id/sessions
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sessions, err := h.sessionSvc.List(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, sessions)
}

// Generate 按周规则批量生成节次
// POST /api/v1/courses/:id/sessions/generate
func (h *SessionHandler) Generate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.GenerateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.Generate(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportICS 导出课程节次为 iCalendar
// GET /api/v1/courses/:id/sessions.ics
func (h *SessionHandler) ExportICS(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	ics, err := h.calendarSvc.SessionsICS(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sessions.ics"`)
	c.Data(200, "text/calendar; charset=utf-8", []byte(ics))
}

// Get 节次详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, session)
}

// Open 开启签到
// POST /api/v1/sessions/:id/open
func (h *SessionHandler) Open(c *gin.Context) {
	h.transition(c, h.sessionSvc.Open)
}

// Pause 暂停签到
// POST /api/v1/sessions/:id/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	h.transition(c, h.sessionSvc.Pause)
}

// Close 关闭签到
// POST /api/v1/sessions/:id/close
func (h *SessionHandler) Close(c *gin.Context) {
	h.transition(c, h.sessionSvc.Close)
}

type sessionTransition func(ctx context.Context, actor service.Actor, id string) (*dto.SessionResponse, error)

func (h *SessionHandler) transition(c *gin.Context, fn sessionTransition) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, session)
}
