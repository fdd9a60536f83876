package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Attend 学生自助签到
// POST /api/v1/sessions/:id/attend
func (h *AttendanceHandler) Attend(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AttendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	att, err := h.attendanceSvc.Attend(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, att)
}

// Summary 节次出席汇总
// GET /api/v1/sessions/:id/summary
func (h *AttendanceHandler) Summary(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	summary, err := h.attendanceSvc.Summary(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, summary)
}

// RollCallList 点名册
// GET /api/v1/sessions/:id/rollcall
func (h *AttendanceHandler) RollCallList(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.attendanceSvc.RollCallList(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, list)
}

// RollCallUpdate 批量点名
// PATCH /api/v1/sessions/:id/rollcall
func (h *AttendanceHandler) RollCallUpdate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateRollCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.RollCallUpdate(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Correct 修正单条考勤
// PATCH /api/v1/attendance/:id
func (h *AttendanceHandler) Correct(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CorrectAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	att, err := h.attendanceSvc.Correct(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, att)
}

// MyAttendance 本人考勤记录
// GET /api/v1/attendance/my
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.attendanceSvc.MyAttendance(c.Request.Context(), actor, c.Query("course_id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, list)
}
