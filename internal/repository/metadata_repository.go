package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/klmaterial-hub/internal/models"
)

const metadataColumns = `doc_id, folder, file_name, views, downloads, rating, rating_count, last_downloaded_at, created_at, updated_at`

// MetadataRepository persists per-file usage counters in PostgreSQL.
type MetadataRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewMetadataRepository constructs the repository.
func NewMetadataRepository(db *sqlx.DB) *MetadataRepository {
	return &MetadataRepository{db: db, now: time.Now}
}

// GetAll returns every metadata record.
func (r *MetadataRepository) GetAll(ctx context.Context) ([]models.MaterialMetadata, error) {
	query := `SELECT ` + metadataColumns + ` FROM material_metadata`
	var records []models.MaterialMetadata
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list material metadata: %w", err)
	}
	return records, nil
}

// Get returns one record, or nil when the document has none yet.
func (r *MetadataRepository) Get(ctx context.Context, docID string) (*models.MaterialMetadata, error) {
	query := `SELECT ` + metadataColumns + ` FROM material_metadata WHERE doc_id = $1`
	var record models.MaterialMetadata
	if err := r.db.GetContext(ctx, &record, query, docID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material metadata %s: %w", docID, err)
	}
	return &record, nil
}

// UpsertIncrement adds one to the given counter, creating the record with that counter at 1 when absent.
// Download increments also stamp last_downloaded_at.
func (r *MetadataRepository) UpsertIncrement(ctx context.Context, docID, folder, file string, field models.MetadataField) error {
	if !field.Valid() {
		return fmt.Errorf("unknown metadata field %q", field)
	}
	const query = `INSERT INTO material_metadata (doc_id, folder, file_name, views, downloads, rating, rating_count, last_downloaded_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $7)
ON CONFLICT (doc_id)
DO UPDATE SET views = material_metadata.views + EXCLUDED.views,
              downloads = material_metadata.downloads + EXCLUDED.downloads,
              last_downloaded_at = COALESCE(EXCLUDED.last_downloaded_at, material_metadata.last_downloaded_at),
              updated_at = EXCLUDED.updated_at`

	now := r.now().UTC()
	var views, downloads int64
	var downloadedAt *time.Time
	switch field {
	case models.FieldViews:
		views = 1
	case models.FieldDownloads:
		downloads = 1
		downloadedAt = &now
	}
	if _, err := r.db.ExecContext(ctx, query, docID, folder, file, views, downloads, downloadedAt, now); err != nil {
		return fmt.Errorf("increment %s for %s: %w", field, docID, err)
	}
	return nil
}

// SetRating stores a new running average and count.
func (r *MetadataRepository) SetRating(ctx context.Context, docID, folder, file string, average float64, count int64) error {
	const query = `INSERT INTO material_metadata (doc_id, folder, file_name, views, downloads, rating, rating_count, created_at, updated_at)
VALUES ($1, $2, $3, 0, 0, $4, $5, $6, $6)
ON CONFLICT (doc_id)
DO UPDATE SET rating = EXCLUDED.rating, rating_count = EXCLUDED.rating_count, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, docID, folder, file, average, count, r.now().UTC()); err != nil {
		return fmt.Errorf("set rating for %s: %w", docID, err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (r *MetadataRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
