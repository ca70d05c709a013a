package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/service"
	"github.com/noah-isme/klmaterial-hub/pkg/config"
)

// ContextSessionKey is the gin context key storing the browsing session id.
const ContextSessionKey = "sessionID"

// Session attaches the anonymous browsing session to every request. A missing or invalid
// cookie is replaced by a freshly issued one; issuing failures leave the request anonymous.
func Session(sessions *service.SessionService, cfg config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cfg.CookieName); err == nil && raw != "" {
			if claims, err := sessions.Validate(raw); err == nil {
				c.Set(ContextSessionKey, claims.SessionID)
				c.Next()
				return
			}
		}

		token, claims, err := sessions.Issue()
		if err != nil {
			logger.Warn("issue browsing session", zap.Error(err))
			c.Next()
			return
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cfg.CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(ContextSessionKey, claims.SessionID)
		c.Next()
	}
}

// SessionID returns the browsing session id attached by Session, or "".
func SessionID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ContextSessionKey)
}
