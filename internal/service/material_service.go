package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

const defaultHistoryLimit = 10

// SearchHistoryRepository stores recent queries per browsing session.
type SearchHistoryRepository interface {
	Push(ctx context.Context, sessionID, query string, limit int, ttl time.Duration) error
	Recent(ctx context.Context, sessionID string, limit int) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}

// FavoritesRepository stores the documents a browsing session starred.
type FavoritesRepository interface {
	Toggle(ctx context.Context, sessionID, docID string, ttl time.Duration) (bool, error)
	List(ctx context.Context, sessionID string) ([]string, error)
}

// CatalogLoader yields the current materials index.
type CatalogLoader interface {
	Load(ctx context.Context, force bool) (*CatalogResult, error)
	Refresh(ctx context.Context) (*CatalogResult, error)
}

// MaterialServiceConfig tunes the materials facade.
type MaterialServiceConfig struct {
	HistoryLimit int
	SessionTTL   time.Duration
}

// MaterialService composes listing, filtering, the metadata overlay and the view builder.
type MaterialService struct {
	catalog   CatalogLoader
	metadata  *MetadataService
	history   SearchHistoryRepository
	favorites FavoritesRepository
	registry  *models.SubjectRegistry
	urls      ContentURLs
	validator *validator.Validate
	logger    *zap.Logger
	cfg       MaterialServiceConfig
}

// NewMaterialService constructs the facade. Nil history or favorites repositories disable those features.
func NewMaterialService(catalog CatalogLoader, metadata *MetadataService, history SearchHistoryRepository, favorites FavoritesRepository, registry *models.SubjectRegistry, urls ContentURLs, logger *zap.Logger, cfg MaterialServiceConfig) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &MaterialService{
		catalog:   catalog,
		metadata:  metadata,
		history:   history,
		favorites: favorites,
		registry:  registry,
		urls:      urls,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// Registry exposes the subject registry.
func (s *MaterialService) Registry() *models.SubjectRegistry { return s.registry }

// PageStateFor maps a listing failure onto the page state shown in place of the cards.
func PageStateFor(err error) dto.PageState {
	switch {
	case err == nil:
		return dto.PageStateReady
	case appErrors.HasCode(err, appErrors.ErrRateLimited.Code):
		return dto.PageStateRateLimited
	case appErrors.HasCode(err, appErrors.ErrNoMaterials.Code):
		return dto.PageStateEmpty
	default:
		return dto.PageStateError
	}
}

// Page builds the materials page for a selection. The page is always returned for listing
// failures, carrying the failure state and no cards; the listing error is returned alongside it.
func (s *MaterialService) Page(ctx context.Context, sel models.ActiveSelection, sessionID string) (*dto.MaterialsPage, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	page := &dto.MaterialsPage{
		State:     dto.PageStateReady,
		Selection: sel,
		Groups:    []dto.SubjectGroupView{},
		Subjects:  s.registry.All(),
	}
	if sel.HasQuery() {
		s.recordQuery(ctx, sessionID, sel.Query)
	}
	page.History = s.History(ctx, sessionID)

	result, err := s.catalog.Load(ctx, false)
	if err != nil {
		page.State = PageStateFor(err)
		page.Message = appErrors.FromError(err).Message
		return page, err
	}
	page.Source = result.Source
	page.CacheHit = result.CacheHit

	narrowed := Narrow(result.Index, sel, s.registry)
	if narrowed.IsEmpty() {
		page.State = dto.PageStateNoResults
		page.Message = "No materials match the current filters"
		return page, nil
	}
	page.Groups = BuildView(narrowed, sel, s.metadata.FetchAll(ctx), s.registry, s.urls)
	markFavorites(page.Groups, s.favoriteSet(ctx, sessionID))
	page.TotalFiles = narrowed.TotalFiles()
	return page, nil
}

// Narrowed returns the card groups for a selection without page decoration.
func (s *MaterialService) Narrowed(ctx context.Context, sel models.ActiveSelection) ([]dto.SubjectGroupView, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	result, err := s.catalog.Load(ctx, false)
	if err != nil {
		return nil, err
	}
	narrowed := Narrow(result.Index, sel, s.registry)
	return BuildView(narrowed, sel, s.metadata.FetchAll(ctx), s.registry, s.urls), nil
}

// ResolveFile finds a listed file so tracking and rating cannot mint arbitrary document ids.
func (s *MaterialService) ResolveFile(ctx context.Context, ref dto.MaterialRef) (models.RemoteFile, error) {
	if err := s.validator.Struct(ref); err != nil {
		return models.RemoteFile{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "folder and file are required")
	}
	result, err := s.catalog.Load(ctx, false)
	if err != nil {
		return models.RemoteFile{}, err
	}
	file, ok := result.Index.Find(ref.Folder, ref.File)
	if !ok {
		return models.RemoteFile{}, appErrors.Clone(appErrors.ErrNotFound, "material not found")
	}
	return file, nil
}

// View records a card view.
func (s *MaterialService) View(ctx context.Context, ref dto.MaterialRef) (*dto.TrackResponse, error) {
	file, err := s.ResolveFile(ctx, ref)
	if err != nil {
		return nil, err
	}
	queued := s.metadata.TrackView(ctx, file)
	return &dto.TrackResponse{DocID: file.DocID(), Queued: queued}, nil
}

// Download records a download and returns the resolved content URL.
func (s *MaterialService) Download(ctx context.Context, ref dto.MaterialRef) (*dto.DownloadResponse, error) {
	file, err := s.ResolveFile(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.metadata.TrackDownload(ctx, file)
	return &dto.DownloadResponse{URL: s.urls.Resolve(file)}, nil
}

// Metadata returns the usage counters of one file; zero counters when none are stored.
func (s *MaterialService) Metadata(ctx context.Context, ref dto.MaterialRef) (*models.UsageMetadata, error) {
	file, err := s.ResolveFile(ctx, ref)
	if err != nil {
		return nil, err
	}
	usage := models.UsageMetadata{}
	if record := s.metadata.Get(ctx, file.Folder, file.Name); record != nil {
		usage = record.Usage()
	}
	return &usage, nil
}

// Rate submits a star rating for the session.
func (s *MaterialService) Rate(ctx context.Context, sessionID string, req dto.RateMaterialRequest) (models.RatingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.RatingResult{Reason: "invalid rating"}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "folder, file and a star between 1 and 5 are required")
	}
	file, err := s.ResolveFile(ctx, dto.MaterialRef{Folder: req.Folder, File: req.File})
	if err != nil {
		return models.RatingResult{Reason: appErrors.FromError(err).Message}, err
	}
	return s.metadata.Rate(ctx, sessionID, file.Folder, file.Name, req.Star)
}

// History returns the session's recent queries, newest first.
func (s *MaterialService) History(ctx context.Context, sessionID string) []string {
	if s.history == nil || sessionID == "" {
		return []string{}
	}
	items, err := s.history.Recent(ctx, sessionID, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Warn("search history unavailable", zap.Error(err))
		return []string{}
	}
	return items
}

// ClearHistory forgets the session's recent queries.
func (s *MaterialService) ClearHistory(ctx context.Context, sessionID string) error {
	if s.history == nil || sessionID == "" {
		return nil
	}
	if err := s.history.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("search history clear failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not clear search history")
	}
	return nil
}

// ToggleFavorite stars or unstars a listed file for the session.
func (s *MaterialService) ToggleFavorite(ctx context.Context, sessionID string, ref dto.MaterialRef) (*dto.FavoriteResponse, error) {
	if s.favorites == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "favorites not configured")
	}
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a browsing session is required")
	}
	file, err := s.ResolveFile(ctx, ref)
	if err != nil {
		return nil, err
	}
	on, err := s.favorites.Toggle(ctx, sessionID, file.DocID(), s.cfg.SessionTTL)
	if err != nil {
		s.logger.Warn("favorite toggle failed", zap.String("doc_id", file.DocID()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update favorites")
	}
	return &dto.FavoriteResponse{DocID: file.DocID(), Favorite: on}, nil
}

func (s *MaterialService) favoriteSet(ctx context.Context, sessionID string) map[string]struct{} {
	if s.favorites == nil || sessionID == "" {
		return nil
	}
	ids, err := s.favorites.List(ctx, sessionID)
	if err != nil {
		s.logger.Warn("favorites unavailable", zap.Error(err))
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func markFavorites(groups []dto.SubjectGroupView, favorites map[string]struct{}) {
	if len(favorites) == 0 {
		return
	}
	for gi := range groups {
		for ci := range groups[gi].Cards {
			_, groups[gi].Cards[ci].Favorite = favorites[groups[gi].Cards[ci].DocID]
		}
	}
}

func (s *MaterialService) recordQuery(ctx context.Context, sessionID, query string) {
	if s.history == nil || sessionID == "" {
		return
	}
	if err := s.history.Push(ctx, sessionID, query, s.cfg.HistoryLimit, s.cfg.SessionTTL); err != nil {
		s.logger.Warn("search history write failed", zap.Error(err))
	}
}

// Refresh forces a new listing, bypassing and replacing the cache.
func (s *MaterialService) Refresh(ctx context.Context) (*dto.RefreshResponse, error) {
	result, err := s.catalog.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{Source: result.Source, Subjects: result.Index.Len(), TotalFiles: result.Index.TotalFiles()}, nil
}
