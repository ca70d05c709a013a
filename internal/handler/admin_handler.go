package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/pkg/response"
)

type catalogRefresher interface {
	Refresh(ctx context.Context) (*dto.RefreshResponse, error)
}

// AdminHandler exposes maintenance endpoints.
type AdminHandler struct {
	catalog catalogRefresher
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(catalog catalogRefresher) *AdminHandler {
	return &AdminHandler{catalog: catalog}
}

// Refresh godoc
// @Summary Rebuild the materials listing
// @Description Bypasses the cache and runs the listing fallback chain again.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/catalog/refresh [post]
func (h *AdminHandler) Refresh(c *gin.Context) {
	resp, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
