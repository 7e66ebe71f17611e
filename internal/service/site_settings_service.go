package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)


// DefaultSchoolName is served until the settings row is first saved.
const DefaultSchoolName = "Escola"

type siteSettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Upsert(ctx context.Context, settings *models.SiteSettings) error
}

// SiteSettingsService exposes the school branding shown on public pages.
type SiteSettingsService struct {
	repo      siteSettingsRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteSettingsService constructs the settings service.
func NewSiteSettingsService(repo siteSettingsRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SiteSettingsService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteSettingsService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the stored settings or the defaults.
func (s *SiteSettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	var cached models.SiteSettings
	if s.cache.Load(ctx, CacheSiteSettings, &cached, "site") {
		return &cached, nil
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, storeFailure(s.logger, err, "failed to load site settings")
		}
		settings = &models.SiteSettings{SchoolName: DefaultSchoolName}
	}
	s.cache.Store(ctx, CacheSiteSettings, settings, "site")
	return settings, nil
}

// Save replaces the settings row. actorID identifies the administrator.
func (s *SiteSettingsService) Save(ctx context.Context, actorID string, req models.SiteSettingsRequest) (*models.SiteSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	settings := &models.SiteSettings{SchoolName: req.SchoolName, LogoURL: req.LogoURL}
	if actorID != "" {
		settings.UpdatedBy = &actorID
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, storeFailure(s.logger, err, "failed to save site settings")
	}
	s.cache.Invalidate(ctx, CacheSiteSettings)
	s.logger.Info("site settings saved", zap.String("actor_id", actorID))
	return settings, nil
}
