package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type classOfferingRepository interface {
	List(ctx context.Context) ([]models.ClassOffering, error)
	FindByID(ctx context.Context, id string) (*models.ClassOffering, error)
	Create(ctx context.Context, offering *models.ClassOffering) error
	Update(ctx context.Context, offering *models.ClassOffering) error
	Delete(ctx context.Context, id string) error
}

// ClassOfferingService manages the class catalog.
type ClassOfferingService struct {
	repo      classOfferingRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassOfferingService constructs the catalog service.
func NewClassOfferingService(repo classOfferingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassOfferingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassOfferingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the catalog ordered by name.
func (s *ClassOfferingService) List(ctx context.Context) ([]models.ClassOffering, error) {
	var cached []models.ClassOffering
	if s.cache.Load(ctx, CacheClassCatalog, &cached) {
		return cached, nil
	}
	offerings, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list class offerings")
	}
	if offerings == nil {
		offerings = []models.ClassOffering{}
	}
	s.cache.Store(ctx, CacheClassCatalog, offerings)
	return offerings, nil
}

// Get returns one class offering.
func (s *ClassOfferingService) Get(ctx context.Context, id string) (*models.ClassOffering, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class offering not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load class offering", zap.String("class_offering_id", id))
	}
	return offering, nil
}

// Create adds a class offering to the catalog.
func (s *ClassOfferingService) Create(ctx context.Context, req models.ClassOfferingRequest) (*models.ClassOffering, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	offering := &models.ClassOffering{
		Name:            req.Name,
		Price:           req.Price.Round(2),
		Periodicity:     req.Periodicity,
		WeeklyFrequency: req.WeeklyFrequency,
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, storeFailure(s.logger, err, "failed to create class offering")
	}
	s.invalidate(ctx)
	s.logger.Info("class offering created", zap.String("class_offering_id", offering.ID), zap.String("periodicity", string(offering.Periodicity)))
	return offering, nil
}

// Update replaces the offering fields. Price changes apply to installments generated afterwards.
func (s *ClassOfferingService) Update(ctx context.Context, id string, req models.ClassOfferingRequest) (*models.ClassOffering, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	offering, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	offering.Name = req.Name
	offering.Price = req.Price.Round(2)
	offering.Periodicity = req.Periodicity
	offering.WeeklyFrequency = req.WeeklyFrequency
	if err := s.repo.Update(ctx, offering); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class offering not found")
		}
		return nil, storeFailure(s.logger, err, "failed to update class offering", zap.String("class_offering_id", id))
	}
	s.invalidate(ctx)
	return offering, nil
}

// Delete removes an offering that has no enrollments.
func (s *ClassOfferingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class offering not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "class offering has enrollments")
		}
		return storeFailure(s.logger, err, "failed to delete class offering", zap.String("class_offering_id", id))
	}
	s.invalidate(ctx)
	return nil
}

func (s *ClassOfferingService) validate(req models.ClassOfferingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class offering payload")
	}
	if !req.Price.Round(2).IsPositive() {
		return appErrors.Clone(appErrors.ErrValidation, "price must be at least 0.01")
	}
	return nil
}

func (s *ClassOfferingService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, CacheClassCatalog)
}
