package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/pkg/middleware/requestid"
)

// Audit logs successful maintenance actions once the handler completes.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		logger.Info("admin action",
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			requestid.Field(c),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}
