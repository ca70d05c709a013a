package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	"github.com/noah-isme/klmaterial-hub/internal/repository"
	"github.com/noah-isme/klmaterial-hub/internal/service"
	"github.com/noah-isme/klmaterial-hub/pkg/cache"
	"github.com/noah-isme/klmaterial-hub/pkg/config"
	"github.com/noah-isme/klmaterial-hub/pkg/database"
	"github.com/noah-isme/klmaterial-hub/pkg/github"
	"github.com/noah-isme/klmaterial-hub/pkg/jobs"
	"github.com/noah-isme/klmaterial-hub/pkg/jsdelivr"
)

const trackingQueueName = "tracking"

// Container holds the wired services shared by the HTTP server and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Redis *redis.Client
	DB    *sqlx.DB

	Registry   *models.SubjectRegistry
	Metrics    *service.MetricsService
	Catalog    *service.CatalogService
	Metadata   *service.MetadataService
	Materials  *service.MaterialService
	Subjects   *service.SubjectService
	Exports    *service.ExportService
	Sessions   *service.SessionService
	Admin      *service.AdminAuthenticator
	MetadataDB *repository.MetadataRepository

	tracking *jobs.Queue
}

// NewContainer connects the optional stores and wires every service. Redis and Postgres
// are optional: without Redis the in-process stores are used, without Postgres the usage
// overlay is disabled.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: service.NewMetricsService()}

	registry, err := repository.LoadSubjectRegistry(cfg.Catalog.SubjectsFile)
	if err != nil {
		return nil, fmt.Errorf("load subject registry: %w", err)
	}
	c.Registry = registry

	c.Redis, err = cache.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, using in-process stores", zap.Error(err))
		c.Redis = nil
	}

	if cfg.Metadata.Enabled {
		c.DB, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logger.Warn("metadata store unavailable, usage overlay disabled", zap.Error(err))
			c.DB = nil
		}
	}

	loc := repository.RemoteLocation{Repo: cfg.Remote.Repo, Branch: cfg.Remote.Branch, Root: cfg.Remote.MaterialsPath}
	gh := github.New(cfg.Remote.Token, cfg.Remote.APIBase, cfg.Remote.Timeout)
	mirror := jsdelivr.New(cfg.Remote.MirrorBase, cfg.Remote.Timeout)

	var (
		cacheRepo   service.CacheRepository
		guard       service.RatingGuard
		history     service.SearchHistoryRepository
		favorites   service.FavoritesRepository
		metadataRep service.MetadataRepository
	)
	if c.Redis != nil {
		cacheRepo = repository.NewCacheRepository(c.Redis)
		guard = repository.NewRatingGuardRepository(c.Redis)
		history = repository.NewSearchHistoryRepository(c.Redis)
		favorites = repository.NewFavoritesRepository(c.Redis)
	} else {
		cacheRepo = repository.NewMemoryCacheRepository()
		guard = repository.NewMemoryRatingGuard()
		history = repository.NewMemorySearchHistory()
		favorites = repository.NewMemoryFavorites()
	}
	if c.DB != nil {
		c.MetadataDB = repository.NewMetadataRepository(c.DB)
		metadataRep = c.MetadataDB
	}

	cacheSvc := service.NewCacheService(cacheRepo, c.Metrics, cfg.Catalog.CacheKey, cfg.Catalog.CacheTTL, logger)
	c.Catalog = service.NewCatalogService(cacheSvc, c.Metrics, logger,
		repository.NewTreeSource(gh, loc, registry),
		repository.NewMirrorSource(mirror, loc, registry),
		repository.NewFolderSource(gh, loc, registry, logger),
	)

	c.Metadata = service.NewMetadataService(metadataRep, guard, nil, c.Metrics, logger, cfg.Session.TTL)
	urls := service.NewContentURLs(cfg.Remote.Repo, cfg.Remote.Branch, cfg.Remote.MaterialsPath,
		cfg.Remote.RawContentBase, cfg.Remote.LFSContentBase, cfg.Remote.LFSExtensions)
	c.Materials = service.NewMaterialService(c.Catalog, c.Metadata, history, favorites, registry, urls, logger,
		service.MaterialServiceConfig{SessionTTL: cfg.Session.TTL})
	c.Subjects = service.NewSubjectService(registry)
	c.Exports = service.NewExportService(c.Materials, logger)
	c.Sessions = service.NewSessionService(cfg.Session.Secret, cfg.Session.TTL)
	c.Admin = service.NewAdminAuthenticator(cfg.Admin.TokenHash)

	return c, nil
}

// StartTracking moves view and download writes onto background workers.
func (c *Container) StartTracking(ctx context.Context) {
	if !c.Metadata.Enabled() || c.tracking != nil {
		return
	}
	c.tracking = jobs.NewQueue(trackingQueueName, c.Metadata.ProcessTracking, jobs.QueueConfig{
		Workers:    c.Config.Tracking.Workers,
		BufferSize: c.Config.Tracking.BufferSize,
		Logger:     c.Logger,
	})
	c.tracking.Start(ctx)
	c.Metadata.SetDispatcher(c.tracking)
}

// Close drains the tracking queue and releases the stores.
func (c *Container) Close() error {
	if c.tracking != nil {
		c.tracking.Stop()
	}
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
