package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/backend/internal/service"
	"attendly/backend/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取认证中间件注入的用户主体。
// 注入缺失时写入 401 响应并返回 false，调用方应直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	uid, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	userID, ok := uid.(string)
	if !ok || userID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}

	r, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	role, ok := r.(string)
	if !ok || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}

	return service.Actor{UserID: userID, Role: role}, true
}
