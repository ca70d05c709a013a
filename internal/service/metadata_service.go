package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/jobs"
)

// Tracking job types.
const (
	JobTrackView     = "track_view"
	JobTrackDownload = "track_download"
)

// Rating rejection reasons shown to the user.
const (
	ReasonAlreadyRated = "already rated this session"
	ReasonUnavailable  = "metadata store unavailable"
	ReasonNotSaved     = "could not save rating"
)

// MetadataRepository persists usage counters.
type MetadataRepository interface {
	GetAll(ctx context.Context) ([]models.MaterialMetadata, error)
	Get(ctx context.Context, docID string) (*models.MaterialMetadata, error)
	UpsertIncrement(ctx context.Context, docID, folder, file string, field models.MetadataField) error
	SetRating(ctx context.Context, docID, folder, file string, average float64, count int64) error
}

// RatingGuard remembers which documents a session has already rated.
type RatingGuard interface {
	Claim(ctx context.Context, sessionID, docID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionID, docID string) error
}

// Dispatcher hands jobs to background workers without blocking.
type Dispatcher interface {
	Enqueue(job jobs.Job) error
}

// TrackEvent is the payload of a tracking job.
type TrackEvent struct {
	DocID  string
	Folder string
	File   string
	Field  models.MetadataField
}

// MetadataService overlays usage counters and records views, downloads and ratings.
// A nil repository disables the overlay.
type MetadataService struct {
	repo       MetadataRepository
	guard      RatingGuard
	dispatcher Dispatcher
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
	sessionTTL time.Duration
}

// NewMetadataService constructs the overlay. Without a dispatcher tracking writes run inline.
func NewMetadataService(repo MetadataRepository, guard RatingGuard, dispatcher Dispatcher, metrics *MetricsService, logger *zap.Logger, sessionTTL time.Duration) *MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataService{
		repo:       repo,
		guard:      guard,
		dispatcher: dispatcher,
		validator:  validator.New(),
		metrics:    metrics,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// Enabled reports whether a metadata store is configured.
func (s *MetadataService) Enabled() bool {
	return s != nil && s.repo != nil
}

// SetDispatcher wires the background dispatcher once it exists.
func (s *MetadataService) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// FetchAll returns counters keyed by document id. Failures yield an empty map.
func (s *MetadataService) FetchAll(ctx context.Context) map[string]models.UsageMetadata {
	out := map[string]models.UsageMetadata{}
	if !s.Enabled() {
		return out
	}
	start := time.Now()
	records, err := s.repo.GetAll(ctx)
	s.metrics.ObserveDBQuery("metadata_get_all", time.Since(start))
	if err != nil {
		s.logger.Warn("metadata overlay unavailable", zap.Error(err))
		return out
	}
	for _, r := range records {
		out[r.DocID] = r.Usage()
	}
	return out
}

// Get returns one file's record, or nil when absent or unavailable.
func (s *MetadataService) Get(ctx context.Context, folder, file string) *models.MaterialMetadata {
	if !s.Enabled() {
		return nil
	}
	record, err := s.repo.Get(ctx, models.DocumentID(folder, file))
	if err != nil {
		s.logger.Warn("metadata lookup failed", zap.String("folder", folder), zap.String("file", file), zap.Error(err))
		return nil
	}
	return record
}

// TrackView records a view without waiting for the write. It reports whether the event was accepted.
func (s *MetadataService) TrackView(ctx context.Context, file models.RemoteFile) bool {
	return s.track(ctx, file, models.FieldViews)
}

// TrackDownload records a download without waiting for the write.
func (s *MetadataService) TrackDownload(ctx context.Context, file models.RemoteFile) bool {
	return s.track(ctx, file, models.FieldDownloads)
}

func (s *MetadataService) track(ctx context.Context, file models.RemoteFile, field models.MetadataField) bool {
	if !s.Enabled() {
		return false
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeFor(field),
		Payload: TrackEvent{DocID: file.DocID(), Folder: file.Folder, File: file.Name, Field: field},
	}
	if s.dispatcher == nil {
		if err := s.ProcessTracking(ctx, job); err != nil {
			s.logger.Warn("tracking write failed", zap.String("doc_id", file.DocID()), zap.Error(err))
		}
		return true
	}
	if err := s.dispatcher.Enqueue(job); err != nil {
		s.logger.Warn("tracking event dropped", zap.String("doc_id", file.DocID()), zap.String("type", job.Type), zap.Error(err))
		s.metrics.RecordTrackingWrite(string(field), false)
		return false
	}
	return true
}

func jobTypeFor(field models.MetadataField) string {
	if field == models.FieldDownloads {
		return JobTrackDownload
	}
	return JobTrackView
}

// ProcessTracking applies a tracking job. View failures are swallowed; download failures are returned
// so the dispatcher logs them. Jobs are never retried.
func (s *MetadataService) ProcessTracking(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(TrackEvent)
	if !ok {
		return fmt.Errorf("unexpected tracking payload %T", job.Payload)
	}
	start := time.Now()
	err := s.repo.UpsertIncrement(ctx, event.DocID, event.Folder, event.File, event.Field)
	s.metrics.ObserveDBQuery("metadata_increment", time.Since(start))
	s.metrics.RecordTrackingWrite(string(event.Field), err == nil)
	if err == nil {
		return nil
	}
	if event.Field == models.FieldViews {
		s.logger.Debug("view tracking failed", zap.String("doc_id", event.DocID), zap.Error(err))
		return nil
	}
	return err
}

// Rate folds a star into the running average. Each session may rate a document once;
// the claim is taken before the write and released if the write fails.
func (s *MetadataService) Rate(ctx context.Context, sessionID, folder, file string, star int) (models.RatingResult, error) {
	if err := s.validator.Var(star, "min=1,max=5"); err != nil {
		return models.RatingResult{Reason: "star must be between 1 and 5"}, appErrors.Clone(appErrors.ErrValidation, "star must be between 1 and 5")
	}
	if sessionID == "" {
		return models.RatingResult{Reason: "no browsing session"}, appErrors.Clone(appErrors.ErrUnauthorized, "browsing session required")
	}
	if !s.Enabled() || s.guard == nil {
		return models.RatingResult{Reason: ReasonUnavailable}, appErrors.ErrMetadataUnavailable
	}

	docID := models.DocumentID(folder, file)
	claimed, err := s.guard.Claim(ctx, sessionID, docID, s.sessionTTL)
	if err != nil {
		s.logger.Error("rating guard unavailable", zap.String("doc_id", docID), zap.Error(err))
		return models.RatingResult{Reason: ReasonUnavailable}, appErrors.Wrap(err, appErrors.ErrMetadataUnavailable.Code, appErrors.ErrMetadataUnavailable.Status, appErrors.ErrMetadataUnavailable.Message)
	}
	if !claimed {
		result := models.RatingResult{Reason: ReasonAlreadyRated}
		if current, getErr := s.repo.Get(ctx, docID); getErr == nil && current != nil {
			result.Rating = current.Rating
			result.Count = current.RatingCount
		}
		return result, appErrors.ErrAlreadyRated
	}

	current, err := s.repo.Get(ctx, docID)
	if err != nil {
		return s.failRating(ctx, sessionID, docID, err)
	}
	var average float64
	var count int64
	if current != nil {
		average, count = current.Rating, current.RatingCount
	}
	newAverage, newCount := models.NextRating(average, count, star)
	if err := s.repo.SetRating(ctx, docID, folder, file, newAverage, newCount); err != nil {
		return s.failRating(ctx, sessionID, docID, err)
	}
	s.logger.Info("material rated", zap.String("doc_id", docID), zap.Int("star", star), zap.Float64("rating", newAverage), zap.Int64("count", newCount))
	return models.RatingResult{Success: true, Rating: newAverage, Count: newCount}, nil
}

func (s *MetadataService) failRating(ctx context.Context, sessionID, docID string, cause error) (models.RatingResult, error) {
	s.logger.Error("rating write failed", zap.String("doc_id", docID), zap.Error(cause))
	if err := s.guard.Release(ctx, sessionID, docID); err != nil {
		s.logger.Warn("rating guard release failed", zap.String("doc_id", docID), zap.Error(err))
	}
	return models.RatingResult{Reason: ReasonNotSaved}, appErrors.Wrap(cause, appErrors.ErrMetadataUnavailable.Code, appErrors.ErrMetadataUnavailable.Status, ReasonNotSaved)
}
