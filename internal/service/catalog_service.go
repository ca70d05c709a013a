package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

// SourceCache names the pseudo-source of a listing served from the cache.
const SourceCache = "cache"

// Attempt outcomes recorded per source.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// MaterialSource lists the whole materials index from one remote host.
type MaterialSource interface {
	Name() string
	List(ctx context.Context) (models.MaterialsIndex, error)
}

// SourceAttempt records one step of the fallback chain.
type SourceAttempt struct {
	Source   string        `json:"source"`
	Outcome  string        `json:"outcome"`
	Files    int           `json:"files"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// CatalogResult is a loaded index plus where it came from.
type CatalogResult struct {
	Index    models.MaterialsIndex
	Source   string
	CacheHit bool
	Attempts []SourceAttempt
}

// CatalogService runs the ordered fallback chain behind the catalog cache.
// Only a success of the first (bulk tree) source is written to the cache.
type CatalogService struct {
	sources []MaterialSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger

	// mu serialises chain runs so at most one attempt populates the cache at a time.
	mu sync.Mutex
}

// NewCatalogService constructs the lister. Sources are tried in the given order.
func NewCatalogService(cache *CacheService, metrics *MetricsService, logger *zap.Logger, sources ...MaterialSource) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{sources: sources, cache: cache, metrics: metrics, logger: logger}
}

// Load returns the materials index, from the cache when fresh unless force is set.
// Terminal failures are RATE_LIMITED, NO_MATERIALS or SOURCE_UNAVAILABLE.
func (s *CatalogService) Load(ctx context.Context, force bool) (*CatalogResult, error) {
	if !force {
		if idx, ok := s.cache.Read(ctx); ok {
			return &CatalogResult{Index: idx, Source: SourceCache, CacheHit: true}, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		// Another request may have filled the cache while this one waited.
		if idx, ok := s.cache.Read(ctx); ok {
			return &CatalogResult{Index: idx, Source: SourceCache, CacheHit: true}, nil
		}
	}

	return s.runChain(ctx)
}

// Refresh drops the cached index and runs the chain again.
func (s *CatalogService) Refresh(ctx context.Context) (*CatalogResult, error) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("refresh continues without cache invalidation", zap.Error(err))
	}
	return s.Load(ctx, true)
}

func (s *CatalogService) runChain(ctx context.Context) (*CatalogResult, error) {
	result := &CatalogResult{}
	var failures []string
	sawEmpty := false

	for i, source := range s.sources {
		start := time.Now()
		idx, err := source.List(ctx)
		attempt := SourceAttempt{Source: source.Name(), Duration: time.Since(start)}

		switch {
		case err != nil && appErrors.HasCode(err, appErrors.ErrRateLimited.Code):
			attempt.Outcome = OutcomeRateLimited
			attempt.Error = err.Error()
			s.record(result, attempt)
			return result, err
		case err != nil:
			attempt.Outcome = OutcomeError
			attempt.Error = err.Error()
			s.record(result, attempt)
			failures = append(failures, fmt.Sprintf("%s: %v", source.Name(), err))
			continue
		case idx.IsEmpty():
			attempt.Outcome = OutcomeEmpty
			s.record(result, attempt)
			sawEmpty = true
			continue
		}

		attempt.Outcome = OutcomeOK
		attempt.Files = idx.TotalFiles()
		s.record(result, attempt)
		if i == 0 {
			s.cache.Write(ctx, idx)
		}
		result.Index = idx
		result.Source = source.Name()
		return result, nil
	}

	if sawEmpty {
		return result, appErrors.ErrNoMaterials
	}
	if len(failures) == 0 {
		return result, appErrors.Clone(appErrors.ErrSourceUnavailable, "no material sources configured")
	}
	joined := strings.Join(failures, "; ")
	return result, appErrors.Wrap(errors.New(joined), appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status,
		appErrors.ErrSourceUnavailable.Message+": "+joined)
}

func (s *CatalogService) record(result *CatalogResult, attempt SourceAttempt) {
	result.Attempts = append(result.Attempts, attempt)
	s.metrics.ObserveSourceAttempt(attempt.Source, attempt.Outcome, attempt.Duration)
	fields := []zap.Field{
		zap.String("source", attempt.Source),
		zap.String("outcome", attempt.Outcome),
		zap.Int("files", attempt.Files),
		zap.Duration("duration", attempt.Duration),
	}
	if attempt.Error != "" {
		s.logger.Warn("catalog source attempt failed", append(fields, zap.String("error", attempt.Error))...)
		return
	}
	s.logger.Info("catalog source attempt", fields...)
}
