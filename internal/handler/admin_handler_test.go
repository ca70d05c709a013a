package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

type refresherMock struct {
	resp *dto.RefreshResponse
	err  error
}

func (m refresherMock) Refresh(ctx context.Context) (*dto.RefreshResponse, error) {
	return m.resp, m.err
}

func TestAdminHandlerRefresh(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/admin/catalog/refresh", nil)
	NewAdminHandler(refresherMock{resp: &dto.RefreshResponse{Source: "tree", Subjects: 3, TotalFiles: 9}}).Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "tree", data["source"])

	c, w = newTestContext(http.MethodPost, "/admin/catalog/refresh", nil)
	NewAdminHandler(refresherMock{err: appErrors.ErrRateLimited}).Refresh(c)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

type pingerMock struct{ err error }

func (p pingerMock) Ping(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, map[string]Pinger{"postgres": pingerMock{}}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, map[string]Pinger{"redis": pingerMock{err: assert.AnError}}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
