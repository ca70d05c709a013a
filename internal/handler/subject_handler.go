package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/klmaterial-hub/internal/service"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/response"
)

// SubjectHandler handles subject registry endpoints.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects
// @Description The subject registry with its year and semester navigation tree.
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List())
}

// Get godoc
// @Summary Get subject by code
// @Tags Subjects
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{code} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, ok := h.service.Get(c.Param("code"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "subject not found"))
		return
	}
	response.JSON(c, http.StatusOK, subject)
}
