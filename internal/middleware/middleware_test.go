package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/klmaterial-hub/internal/service"
	"github.com/noah-isme/klmaterial-hub/pkg/config"
)

var sessionCfg = config.SessionConfig{CookieName: "klm_session", TTL: time.Hour}

func sessionRouter(sessions *service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(sessions, sessionCfg, nil))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return router
}

func TestSessionIssuesCookie(t *testing.T) {
	router := sessionRouter(service.NewSessionService("secret", time.Hour))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "klm_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Zero(t, cookie.MaxAge)
	assert.NotEmpty(t, recorder.Body.String())
}

func TestSessionReusesValidCookie(t *testing.T) {
	sessions := service.NewSessionService("secret", time.Hour)
	token, claims, err := sessions.Issue()
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "klm_session", Value: token})
	sessionRouter(sessions).ServeHTTP(recorder, req)

	assert.Equal(t, claims.SessionID, recorder.Body.String())
	assert.Empty(t, recorder.Result().Cookies())
}

func TestSessionReplacesTamperedCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "klm_session", Value: "garbage"})
	sessionRouter(service.NewSessionService("secret", time.Hour)).ServeHTTP(recorder, req)

	require.Len(t, recorder.Result().Cookies(), 1)
	assert.NotEqual(t, "garbage", recorder.Result().Cookies()[0].Value)
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/refresh", AdminOnly(service.NewAdminAuthenticator(string(hash))), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	cases := map[string]int{
		"":             http.StatusUnauthorized,
		"token":        http.StatusUnauthorized,
		"Bearer wrong": http.StatusUnauthorized,
		"Bearer token": http.StatusNoContent,
		"bearer token": http.StatusNoContent,
	}
	for header, want := range cases {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(recorder, req)
		assert.Equal(t, want, recorder.Code, "header %q", header)
	}
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))

	SetCacheHit(c, true)
	SetListing(c, "ready", "tree")
	meta := ExtractMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "ready", meta["state"])
	assert.Equal(t, "tree", meta["source"])
}

func TestMetricsLabelsRoutesAndSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/subjects/:code", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/health", "/subjects/dm", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/subjects/:code",status="404"} 1`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `path="/health"`)
}
