package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Announcement, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.Announcement) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.Announcement) error
	ReplaceTargets(ctx context.Context, exec sqlx.ExtContext, id string, studentIDs []string) error
	TogglePublished(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	tx        transactor
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(tx transactor, repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{tx: tx, repo: repo, validator: validate, logger: logger}
}

// List returns announcements newest first with pagination.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalizePaging(filter.Page, filter.PageSize)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(s.logger, err, "failed to list announcements")
	}
	if rows == nil {
		rows = []models.Announcement{}
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListForStudent returns the published announcements visible to a student.
func (s *AnnouncementService) ListForStudent(ctx context.Context, studentID string) ([]models.Announcement, error) {
	rows, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list student announcements", zap.String("student_id", studentID))
	}
	if rows == nil {
		rows = []models.Announcement{}
	}
	return rows, nil
}

// Get returns an announcement with its targets.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, storeFailure(s.logger, err, "failed to get announcement", zap.String("announcement_id", id))
	}
	return item, nil
}

// Create stores an announcement and its target set.
func (s *AnnouncementService) Create(ctx context.Context, req models.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item := &models.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		Published:  req.Published,
		ForAll:     req.ForAll,
		StudentIDs: targetsOf(req),
	}
	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return err
		}
		return s.repo.ReplaceTargets(ctx, tx, item.ID, item.StudentIDs)
	})
	if err != nil {
		return nil, s.writeFailure(err, "failed to create announcement", item.ID)
	}
	s.logger.Info("announcement created", zap.String("announcement_id", item.ID), zap.Bool("for_all", item.ForAll))
	return item, nil
}

// Update overwrites an announcement and replaces its target set.
func (s *AnnouncementService) Update(ctx context.Context, id string, req models.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Title = req.Title
	item.Content = req.Content
	item.Published = req.Published
	item.ForAll = req.ForAll
	item.StudentIDs = targetsOf(req)

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		return s.repo.ReplaceTargets(ctx, tx, item.ID, item.StudentIDs)
	})
	if err != nil {
		return nil, s.writeFailure(err, "failed to update announcement", id)
	}
	return item, nil
}

// TogglePublished flips the published flag and returns the new state.
func (s *AnnouncementService) TogglePublished(ctx context.Context, id string) (bool, error) {
	published, err := s.repo.TogglePublished(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return false, storeFailure(s.logger, err, "failed to toggle announcement", zap.String("announcement_id", id))
	}
	return published, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return storeFailure(s.logger, err, "failed to delete announcement", zap.String("announcement_id", id))
	}
	return nil
}

func (s *AnnouncementService) validate(req models.AnnouncementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	return nil
}

func (s *AnnouncementService) writeFailure(err error, msg, id string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	case repository.IsForeignKeyViolation(err), repository.IsInvalidID(err):
		return appErrors.Clone(appErrors.ErrNotFound, "target student not found")
	}
	return storeFailure(s.logger, err, msg, zap.String("announcement_id", id))
}

// targetsOf returns the sorted, deduplicated target ids. Broadcasts have none.
func targetsOf(req models.AnnouncementRequest) []string {
	if req.ForAll {
		return []string{}
	}
	seen := make(map[string]struct{}, len(req.StudentIDs))
	out := make([]string, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
