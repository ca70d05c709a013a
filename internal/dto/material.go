package dto

import "github.com/noah-isme/klmaterial-hub/internal/models"

// PageState tells the page which body to render in place of the card grid.
type PageState string

const (
	PageStateReady       PageState = "ready"
	PageStateEmpty       PageState = "empty"
	PageStateNoResults   PageState = "no_results"
	PageStateRateLimited PageState = "rate_limited"
	PageStateError       PageState = "error"
)

// StarState is the fill of one slot of the 5-star control.
type StarState string

const (
	StarFull  StarState = "full"
	StarHalf  StarState = "half"
	StarEmpty StarState = "empty"
)

// MaterialCard is the renderable form of one file.
type MaterialCard struct {
	DocID           string       `json:"doc_id"`
	Folder          string       `json:"folder"`
	Name            string       `json:"name"`
	DisplayName     string       `json:"display_name"`
	HighlightedName string       `json:"highlighted_name"`
	Extension       string       `json:"extension"`
	Icon            string       `json:"icon"`
	SizeBytes       int64        `json:"size_bytes"`
	SizeLabel       string       `json:"size_label"`
	DownloadURL     string       `json:"download_url"`
	Views           int64        `json:"views"`
	Downloads       int64        `json:"downloads"`
	Rating          float64      `json:"rating"`
	RatingCount     int64        `json:"rating_count"`
	Stars           [5]StarState `json:"stars"`
	Favorite        bool         `json:"favorite"`
}

// SubjectGroupView is one subject section of the page.
type SubjectGroupView struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Year      int            `json:"year"`
	Semester  int            `json:"semester"`
	FileCount int            `json:"file_count"`
	Cards     []MaterialCard `json:"cards"`
}

// MaterialsPage is the full view-model of the materials page.
type MaterialsPage struct {
	State      PageState              `json:"state"`
	Message    string                 `json:"message,omitempty"`
	Selection  models.ActiveSelection `json:"selection"`
	Groups     []SubjectGroupView     `json:"groups"`
	TotalFiles int                    `json:"total_files"`
	Source     string                 `json:"source,omitempty"`
	CacheHit   bool                   `json:"-"`
	Subjects   []models.SubjectConfig `json:"-"`
	History    []string               `json:"-"`
}

// MaterialRef identifies a file by folder and name.
type MaterialRef struct {
	Folder string `json:"folder" form:"folder" validate:"required,max=128"`
	File   string `json:"file" form:"file" validate:"required,max=255"`
}

// RateMaterialRequest carries a star rating for a file.
type RateMaterialRequest struct {
	Folder string `json:"folder" validate:"required,max=128"`
	File   string `json:"file" validate:"required,max=255"`
	Star   int    `json:"star" validate:"required,min=1,max=5"`
}

// DownloadResponse returns the resolved content URL of a file.
type DownloadResponse struct {
	URL string `json:"url"`
}

// TrackResponse acknowledges an accepted tracking event.
type TrackResponse struct {
	DocID  string `json:"doc_id"`
	Queued bool   `json:"queued"`
}

// FavoriteResponse reports whether a file is starred after a toggle.
type FavoriteResponse struct {
	DocID    string `json:"doc_id"`
	Favorite bool   `json:"favorite"`
}

// RefreshResponse summarises an admin catalog refresh.
type RefreshResponse struct {
	Source     string `json:"source"`
	Subjects   int    `json:"subjects"`
	TotalFiles int    `json:"total_files"`
}
