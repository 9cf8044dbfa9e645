// Package middleware 提供 HTTP 请求的中间件
// 包括请求 ID、日志记录、CORS 跨域
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求 ID 请求头
const HeaderRequestID = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID 为每个请求分配请求 ID
// 客户端已提供时沿用，否则生成新的 UUID，并写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID 从上下文获取请求 ID，未设置时返回空字符串
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
