package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 最大的正常请求是整班点名批量提交，1MB 足够覆盖数百名学生
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		for _, ginErr := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(ginErr.Err, &mbe) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
