package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// PollHandler 空闲时间投票 HTTP 处理器
type PollHandler struct {
	pollSvc service.PollService
}

// NewPollHandler 创建 PollHandler
func NewPollHandler(pollSvc service.PollService) *PollHandler {
	return &PollHandler{pollSvc: pollSvc}
}

// Create 创建投票
// POST /api/v1/courses/:id/polls
func (h *PollHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	poll, err := h.pollSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.Created(c, poll)
}

// List 课程投票列表
// GET /api/v1/courses/:id/polls
func (h *PollHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.pollSvc.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 投票详情，附带当前用户已投选项
// GET /api/v1/polls/:id
func (h *PollHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	poll, err := h.pollSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, poll)
}

// Vote 投票或改投
// POST /api/v1/polls/:id/vote
func (h *PollHandler) Vote(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.pollSvc.Vote(c.Request.Context(), actor, c.Param("id"), &req); err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// Close 关闭投票
// POST /api/v1/polls/:id/close
func (h *PollHandler) Close(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	poll, err := h.pollSvc.Close(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, poll)
}

// Results 投票结果统计
// GET /api/v1/polls/:id/results
func (h *PollHandler) Results(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	results, err := h.pollSvc.Results(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, results)
}
