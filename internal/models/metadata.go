package models

import (
	"math"
	"strings"
	"time"
)

// MetadataField names a counter column of the metadata store.
type MetadataField string

const (
	// FieldViews counts card views.
	FieldViews MetadataField = "views"
	// FieldDownloads counts download clicks.
	FieldDownloads MetadataField = "downloads"
)

// Valid reports whether the field is one of the known counters.
func (f MetadataField) Valid() bool {
	return f == FieldViews || f == FieldDownloads
}

// MaterialMetadata is the persisted usage record of one file.
type MaterialMetadata struct {
	DocID            string     `db:"doc_id" json:"doc_id"`
	Folder           string     `db:"folder" json:"folder"`
	FileName         string     `db:"file_name" json:"file_name"`
	Views            int64      `db:"views" json:"views"`
	Downloads        int64      `db:"downloads" json:"downloads"`
	Rating           float64    `db:"rating" json:"rating"`
	RatingCount      int64      `db:"rating_count" json:"rating_count"`
	LastDownloadedAt *time.Time `db:"last_downloaded_at" json:"last_downloaded_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Usage projects the record onto the counters shown on a card.
func (m MaterialMetadata) Usage() UsageMetadata {
	return UsageMetadata{Views: m.Views, Downloads: m.Downloads, Rating: m.Rating, RatingCount: m.RatingCount}
}

// UsageMetadata carries the counters overlaid on a material card.
type UsageMetadata struct {
	Views       int64   `json:"views"`
	Downloads   int64   `json:"downloads"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// RatingResult reports the outcome of a rating attempt.
type RatingResult struct {
	Success bool    `json:"success"`
	Rating  float64 `json:"rating"`
	Count   int64   `json:"count"`
	Reason  string  `json:"reason,omitempty"`
}

var unsafeIDChars = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	".", "_",
	"#", "_",
	"$", "_",
	"[", "_",
	"]", "_",
)

// DocumentID derives the metadata key for a file. Characters the document store rejects become underscores.
func DocumentID(folder, file string) string {
	return unsafeIDChars.Replace(folder + "_" + file)
}

// RoundRating rounds an average to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// NextRating folds a new star into a running average.
func NextRating(average float64, count int64, star int) (float64, int64) {
	if count < 0 {
		count = 0
	}
	next := (average*float64(count) + float64(star)) / float64(count+1)
	return RoundRating(next), count + 1
}
