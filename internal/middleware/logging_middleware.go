// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"serial-plotter/internal/utils"
)

// LoggingMiddleware logs each request once it completes
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		logger.LogAPIRequest(
			utils.GetRequestID(c),
			c.Request.Method,
			c.FullPath(),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
		)
	}
}
