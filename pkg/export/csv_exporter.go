package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a titled table shared by the CSV and PDF renderers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	// Widths optionally weights PDF columns; ignored by CSV.
	Widths []float64
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter renders a Dataset as RFC 4180 CSV.
type CSVExporter struct {
	bom bool
}

// CSVOption tweaks CSV output.
type CSVOption func(*CSVExporter)

// WithBOM prefixes output with a UTF-8 byte order mark so spreadsheet tools
// decode subject names and emoji correctly.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *CSVExporter) Extension() string { return "csv" }

// Render writes the header row followed by one record per row; missing cells are empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv export %q: no columns", data.Title)
	}

	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	// WriteAll flushes and reports the first write error.
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("csv export %q: %w", data.Title, err)
	}
	return buf.Bytes(), nil
}
