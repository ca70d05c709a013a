package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedIndex is the stored envelope. Timestamp is Unix milliseconds.
type cachedIndex struct {
	Data      models.MaterialsIndex `json:"data"`
	Timestamp int64                 `json:"timestamp"`
}

// CacheService keeps the last successful bulk listing for a validity window.
// Storage failures are logged and degrade to a miss or a no-op.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	key     string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewCacheService constructs the catalog cache.
func NewCacheService(repo CacheRepository, metrics *MetricsService, key string, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if key == "" {
		key = "catalog:materials"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, key: key, ttl: ttl, logger: logger, now: time.Now}
}

// Enabled indicates whether a cache backend is configured.
func (s *CacheService) Enabled() bool {
	return s != nil && s.repo != nil
}

// TTL returns the validity window.
func (s *CacheService) TTL() time.Duration { return s.ttl }

// Read returns the cached index when present and younger than the validity window.
func (s *CacheService) Read(ctx context.Context) (models.MaterialsIndex, bool) {
	if !s.Enabled() {
		return models.MaterialsIndex{}, false
	}
	start := time.Now()
	var entry cachedIndex
	err := s.repo.Get(ctx, s.key, &entry)
	duration := time.Since(start)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.String("key", s.key), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false, duration)
		return models.MaterialsIndex{}, false
	}
	age := s.now().Sub(time.UnixMilli(entry.Timestamp))
	if age < 0 || age >= s.ttl {
		s.logger.Debug("catalog cache entry expired", zap.Duration("age", age))
		s.metrics.RecordCacheOperation(false, duration)
		return models.MaterialsIndex{}, false
	}
	s.metrics.RecordCacheOperation(true, duration)
	return entry.Data, true
}

// Write replaces the cached index, stamping it with the current time.
func (s *CacheService) Write(ctx context.Context, idx models.MaterialsIndex) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	entry := cachedIndex{Data: idx, Timestamp: s.now().UnixMilli()}
	err := s.repo.Set(ctx, s.key, entry, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", s.key), zap.Error(err))
	}
}

// Invalidate drops the cached index.
func (s *CacheService) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, s.key); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.String("key", s.key), zap.Error(err))
		return err
	}
	return nil
}
