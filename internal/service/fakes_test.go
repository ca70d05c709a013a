package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	"github.com/noah-isme/klmaterial-hub/internal/repository"
)

func defaultRegistry(t *testing.T) *models.SubjectRegistry {
	t.Helper()
	registry, err := repository.LoadSubjectRegistry("")
	require.NoError(t, err)
	return registry
}

const (
	beecName = "Basic Electrical & Electronic Circuits (BEEC)"
	dmName   = "Discrete Mathematics (DM)"
)

func sampleIndex() models.MaterialsIndex {
	b := models.NewIndexBuilder()
	b.Add(beecName, models.RemoteFile{Name: "BEEC_CO1_notes.pdf", Folder: "BEEC", Size: 2048})
	b.Add(beecName, models.RemoteFile{Name: "BEEC_CO2_slides.pptx", Folder: "BEEC", Size: 4096})
	b.Add(dmName, models.RemoteFile{Name: "DM_CO-1_material.pdf", Folder: "DM", Size: 1024})
	return b.Build()
}

type fakeSource struct {
	name  string
	index models.MaterialsIndex
	err   error
	calls *[]string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) List(ctx context.Context) (models.MaterialsIndex, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	return f.index, f.err
}

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

type fakeMetadataRepo struct {
	mu         sync.Mutex
	records    map[string]*models.MaterialMetadata
	getAllErr  error
	upsertErr  error
	setErr     error
	increments []models.MetadataField
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{records: map[string]*models.MaterialMetadata{}}
}

func (r *fakeMetadataRepo) GetAll(ctx context.Context) ([]models.MaterialMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	out := []models.MaterialMetadata{}
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *fakeMetadataRepo) Get(ctx context.Context, docID string) (*models.MaterialMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[docID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeMetadataRepo) UpsertIncrement(ctx context.Context, docID, folder, file string, field models.MetadataField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	rec, ok := r.records[docID]
	if !ok {
		rec = &models.MaterialMetadata{DocID: docID, Folder: folder, FileName: file}
		r.records[docID] = rec
	}
	switch field {
	case models.FieldViews:
		rec.Views++
	case models.FieldDownloads:
		rec.Downloads++
	}
	r.increments = append(r.increments, field)
	return nil
}

func (r *fakeMetadataRepo) SetRating(ctx context.Context, docID, folder, file string, average float64, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	rec, ok := r.records[docID]
	if !ok {
		rec = &models.MaterialMetadata{DocID: docID, Folder: folder, FileName: file}
		r.records[docID] = rec
	}
	rec.Rating = average
	rec.RatingCount = count
	return nil
}

type staticCatalog struct {
	result *CatalogResult
	err    error
	loads  int
}

func (c *staticCatalog) Load(ctx context.Context, force bool) (*CatalogResult, error) {
	c.loads++
	return c.result, c.err
}

func (c *staticCatalog) Refresh(ctx context.Context) (*CatalogResult, error) {
	return c.Load(ctx, true)
}
