package middleware

import (
	"time"

	"feedgen/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one access log line per request through the application logger.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		line := "[%s] %s %s %d %s %s"
		args := []interface{}{
			c.GetString(RequestIDKey),
			c.Request.Method,
			path,
			status,
			time.Since(start),
			c.ClientIP(),
		}
		if status >= 500 {
			logger.Error(line, args...)
			return
		}
		logger.Info(line, args...)
	}
}
