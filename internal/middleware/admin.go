package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/klmaterial-hub/internal/service"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/response"
)

// AdminOnly protects maintenance routes with the configured admin bearer token.
func AdminOnly(auth *service.AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		if err := auth.Verify(strings.TrimSpace(parts[1])); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
