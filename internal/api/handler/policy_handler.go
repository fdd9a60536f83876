package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// PolicyHandler 考勤政策与出席分 HTTP 处理器
type PolicyHandler struct {
	policySvc service.PolicyService
}

// NewPolicyHandler 创建 PolicyHandler
func NewPolicyHandler(policySvc service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policySvc: policySvc}
}

// Get 课程政策，未配置时返回默认值
// GET /api/v1/courses/:id/policy
func (h *PolicyHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	policy, err := h.policySvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, policy)
}

// Upsert 创建或部分更新课程政策
// PUT /api/v1/courses/:id/policy
func (h *PolicyHandler) Upsert(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpsertPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	policy, err := h.policySvc.Upsert(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, policy)
}

// Score 全员出席分
// GET /api/v1/courses/:id/score/attendance
func (h *PolicyHandler) Score(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	score, err := h.policySvc.Score(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	response.OK(c, score)
}
