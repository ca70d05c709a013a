package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"Subject", "File", "Type", "Size", "Downloads", "Rating"}

type catalogViewer interface {
	Narrowed(ctx context.Context, sel models.ActiveSelection) ([]dto.SubjectGroupView, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered catalog export.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the narrowed catalog as CSV or PDF.
type ExportService struct {
	catalog   catalogViewer
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(catalog catalogViewer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		catalog: catalog,
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(export.WithBOM()),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Generate renders the catalog narrowed by sel in the requested format.
func (s *ExportService) Generate(ctx context.Context, sel models.ActiveSelection, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	groups, err := s.catalog.Narrowed(ctx, sel)
	if err != nil {
		return nil, err
	}
	dataset := BuildExportDataset(groups, s.now())
	payload, err := r.Render(dataset)
	if err != nil {
		s.logger.Error("render catalog export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("klmaterial_%s.%s", s.now().UTC().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Payload:     payload,
		Rows:        len(dataset.Rows),
	}, nil
}

// BuildExportDataset flattens card groups into one row per file.
func BuildExportDataset(groups []dto.SubjectGroupView, generatedAt time.Time) export.Dataset {
	data := export.Dataset{
		Title:   "KL Materials " + generatedAt.UTC().Format("2006-01-02 15:04 MST"),
		Headers: exportHeaders,
		Widths:  []float64{4, 5, 1, 1.3, 1.4, 1.1},
	}
	for _, g := range groups {
		for _, card := range g.Cards {
			rating := "-"
			if card.RatingCount > 0 {
				rating = fmt.Sprintf("%.1f (%d)", card.Rating, card.RatingCount)
			}
			data.Rows = append(data.Rows, map[string]string{
				"Subject":   g.Name,
				"File":      card.DisplayName,
				"Type":      card.Extension,
				"Size":      card.SizeLabel,
				"Downloads": strconv.FormatInt(card.Downloads, 10),
				"Rating":    rating,
			})
		}
	}
	return data
}
