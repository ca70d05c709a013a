package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/middleware"
	"github.com/noah-isme/klmaterial-hub/internal/models"
	"github.com/noah-isme/klmaterial-hub/internal/service"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/response"
)

type materialService interface {
	Registry() *models.SubjectRegistry
	Page(ctx context.Context, sel models.ActiveSelection, sessionID string) (*dto.MaterialsPage, error)
	Metadata(ctx context.Context, ref dto.MaterialRef) (*models.UsageMetadata, error)
	View(ctx context.Context, ref dto.MaterialRef) (*dto.TrackResponse, error)
	Download(ctx context.Context, ref dto.MaterialRef) (*dto.DownloadResponse, error)
	Rate(ctx context.Context, sessionID string, req dto.RateMaterialRequest) (models.RatingResult, error)
	History(ctx context.Context, sessionID string) []string
	ClearHistory(ctx context.Context, sessionID string) error
	ToggleFavorite(ctx context.Context, sessionID string, ref dto.MaterialRef) (*dto.FavoriteResponse, error)
}

type exportService interface {
	Generate(ctx context.Context, sel models.ActiveSelection, format string) (*service.ExportResult, error)
}

// MaterialHandler serves the materials listing, tracking and rating endpoints.
type MaterialHandler struct {
	materials materialService
	exports   exportService
}

// NewMaterialHandler constructs the handler. A nil export service disables exports.
func NewMaterialHandler(materials materialService, exports exportService) *MaterialHandler {
	return &MaterialHandler{materials: materials, exports: exports}
}

// List godoc
// @Summary List materials
// @Description Materials grouped by subject, narrowed by year, semester, subject and a search query.
// @Tags Materials
// @Produce json
// @Param year query string false "Year or 'all'"
// @Param semester query string false "Semester or 'all'"
// @Param subject query string false "Subject code"
// @Param q query string false "Search query"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	sel, err := models.SelectionFromQuery(c.Request.URL.Query(), h.materials.Registry())
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.materials.Page(c.Request.Context(), sel, middleware.SessionID(c))
	if page == nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, page.CacheHit)
	middleware.SetListing(c, string(page.State), page.Source)
	if err != nil && page.State != dto.PageStateEmpty {
		response.ErrorWithData(c, err, page)
		return
	}
	response.JSON(c, http.StatusOK, page, middleware.ExtractMeta(c))
}

// Metadata godoc
// @Summary Usage counters of one file
// @Tags Materials
// @Produce json
// @Param folder query string true "Subject folder"
// @Param file query string true "File name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/metadata [get]
func (h *MaterialHandler) Metadata(c *gin.Context) {
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	usage, err := h.materials.Metadata(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usage)
}

// View godoc
// @Summary Record a card view
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body dto.MaterialRef true "File reference"
// @Success 202 {object} response.Envelope
// @Router /materials/view [post]
func (h *MaterialHandler) View(c *gin.Context) {
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	ack, err := h.materials.View(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, ack)
}

// Download godoc
// @Summary Record a download and resolve its URL
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body dto.MaterialRef true "File reference"
// @Success 200 {object} response.Envelope
// @Router /materials/download [post]
func (h *MaterialHandler) Download(c *gin.Context) {
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	resp, err := h.materials.Download(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// DownloadRedirect godoc
// @Summary Record a download and redirect to the file
// @Tags Materials
// @Param folder query string true "Subject folder"
// @Param file query string true "File name"
// @Success 302
// @Router /materials/download [get]
func (h *MaterialHandler) DownloadRedirect(c *gin.Context) {
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	resp, err := h.materials.Download(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, resp.URL)
}

// Rate godoc
// @Summary Rate a file once per session
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body dto.RateMaterialRequest true "Rating"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /materials/rate [post]
func (h *MaterialHandler) Rate(c *gin.Context) {
	var req dto.RateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.materials.Rate(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		response.ErrorWithData(c, err, result)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// History godoc
// @Summary Recent searches of this browsing session
// @Tags Materials
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search-history [get]
func (h *MaterialHandler) History(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.materials.History(c.Request.Context(), middleware.SessionID(c)))
}

// ClearHistory godoc
// @Summary Forget the recent searches of this browsing session
// @Tags Materials
// @Success 204
// @Router /search-history [delete]
func (h *MaterialHandler) ClearHistory(c *gin.Context) {
	if err := h.materials.ClearHistory(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Favorite godoc
// @Summary Star or unstar a file for this browsing session
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body dto.MaterialRef true "File reference"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/favorite [post]
func (h *MaterialHandler) Favorite(c *gin.Context) {
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	resp, err := h.materials.ToggleFavorite(c.Request.Context(), middleware.SessionID(c), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Export godoc
// @Summary Export the narrowed catalog
// @Tags Materials
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /materials/export [get]
func (h *MaterialHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	sel, err := models.SelectionFromQuery(c.Request.URL.Query(), h.materials.Registry())
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), sel, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// bindRef reads folder and file from the JSON body on writes and from the query string otherwise.
func bindRef(c *gin.Context) (dto.MaterialRef, bool) {
	var ref dto.MaterialRef
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&ref)
	} else {
		err = c.ShouldBindJSON(&ref)
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "folder and file are required"))
		return ref, false
	}
	return ref, true
}
