package requestid

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	Header     = "X-Request-ID"
	contextKey = "request_id"
)

// Upstream ids are echoed back into logs and headers, so only accept a conservative shape.
var validID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// Middleware tags each request with an id, reusing a well-formed upstream X-Request-ID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if !validID.MatchString(reqID) {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(Header, reqID)
		c.Next()
	}
}

// Value returns the request id stored in the Gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}

// Field returns the request id as a zap field, or zap.Skip when none was assigned.
func Field(c *gin.Context) zap.Field {
	if id := Value(c); id != "" {
		return zap.String(contextKey, id)
	}
	return zap.Skip()
}
