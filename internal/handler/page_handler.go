package handler

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/middleware"
	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

const materialsTemplate = "materials.html"

type subjectTree interface {
	List() dto.SubjectsResponse
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		// Highlighted names are escaped before <mark> is inserted.
		"marked":    func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
		"filterURL": filterURL,
		"inc":       func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html"))
}

// PageHandler renders the server-side materials page.
type PageHandler struct {
	materials materialService
	subjects  subjectTree
	apiPrefix string
}

// NewPageHandler constructs the handler. apiPrefix locates the JSON API used by the
// page's download links and its rating, view and favorite calls.
func NewPageHandler(materials materialService, subjects subjectTree, apiPrefix string) *PageHandler {
	return &PageHandler{materials: materials, subjects: subjects, apiPrefix: strings.TrimRight(apiPrefix, "/")}
}

type pageView struct {
	Page      *dto.MaterialsPage
	Tree      []dto.YearNode
	Error     string
	APIPrefix string
}

// Materials renders the grouped card grid for the query-string selection.
func (h *PageHandler) Materials(c *gin.Context) {
	view := pageView{Tree: h.subjects.List().Tree, APIPrefix: h.apiPrefix}
	sel, err := models.SelectionFromQuery(c.Request.URL.Query(), h.materials.Registry())
	if err != nil {
		view.Error = appErrors.FromError(err).Message
		view.Page = &dto.MaterialsPage{State: dto.PageStateError, Message: view.Error}
		c.HTML(http.StatusBadRequest, materialsTemplate, view)
		return
	}

	page, err := h.materials.Page(c.Request.Context(), sel, middleware.SessionID(c))
	if page == nil {
		appErr := appErrors.FromError(err)
		view.Page = &dto.MaterialsPage{State: dto.PageStateError, Message: appErr.Message, Selection: sel}
		c.HTML(appErr.Status, materialsTemplate, view)
		return
	}
	view.Page = page
	status := http.StatusOK
	if err != nil && page.State != dto.PageStateEmpty {
		status = appErrors.FromError(err).Status
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, materialsTemplate, view)
}

// filterURL builds the page link for a selection with one axis changed.
func filterURL(sel models.ActiveSelection, key string, value interface{}) string {
	q := url.Values{}
	set := func(k string, v int) {
		if v > 0 {
			q.Set(k, strconv.Itoa(v))
		}
	}
	switch key {
	case "year":
		set("year", toInt(value))
	case "semester":
		set("year", sel.Year)
		set("semester", toInt(value))
	case "subject":
		set("year", sel.Year)
		set("semester", sel.Semester)
		if s, ok := value.(string); ok && s != "" {
			q.Set("subject", s)
		}
	}
	if sel.HasQuery() {
		q.Set("q", sel.Query)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func toInt(v interface{}) int {
	n, _ := v.(int)
	return n
}
