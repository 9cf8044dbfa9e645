package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger 创建请求日志中间件
// 记录每个请求的方法、路径、状态码和耗时
// 根据状态码选择日志级别：5xx 为 error，4xx 为 warn，其余为 info
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := eventFor(status).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("request_id", GetRequestID(c))

		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			event = event.Str("errors", errs)
		}
		event.Msg("request")
	}
}

func eventFor(status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	default:
		return log.Info()
	}
}
