package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type scheduleSlotRepository interface {
	Create(ctx context.Context, slot *models.ScheduleSlot) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, studentID string) ([]models.ScheduleSlotDetail, error)
}

// ScheduleService manages the fixed weekly slots of students.
type ScheduleService struct {
	repo      scheduleSlotRepository
	students  studentReader
	offerings classOfferingReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleSlotRepository, students studentReader, offerings classOfferingReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, students: students, offerings: offerings, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// AddSlot books (day, hour) for a student. The uniqueness of (student, day, hour)
// is enforced by the insert itself.
func (s *ScheduleService) AddSlot(ctx context.Context, req models.CreateSlotRequest) (*models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule slot payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load student", zap.String("student_id", req.StudentID))
	}
	if _, err := s.offerings.FindByID(ctx, req.ClassOfferingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class offering not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load class offering", zap.String("class_offering_id", req.ClassOfferingID))
	}

	slot := &models.ScheduleSlot{
		StudentID:       req.StudentID,
		ClassOfferingID: req.ClassOfferingID,
		DayOfWeek:       *req.DayOfWeek,
		Hour:            *req.Hour,
	}
	created, err := s.repo.Create(ctx, slot)
	if err != nil {
		if repository.IsForeignKeyViolation(err) || repository.IsInvalidID(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student or class offering not found")
		}
		return nil, storeFailure(s.logger, err, "failed to create schedule slot")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrSlotConflict, "")
	}
	s.invalidate(ctx)
	s.logger.Info("schedule slot booked", zap.String("slot_id", slot.ID), zap.Int("day_of_week", slot.DayOfWeek), zap.Int("hour", slot.Hour))
	return slot, nil
}

// RemoveSlot deletes a slot.
func (s *ScheduleService) RemoveSlot(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return storeFailure(s.logger, err, "failed to delete schedule slot", zap.String("slot_id", id))
	}
	s.invalidate(ctx)
	return nil
}

// ListSlots returns every slot arranged in the weekly grid.
func (s *ScheduleService) ListSlots(ctx context.Context) (*models.WeeklyGrid, error) {
	var cached models.WeeklyGrid
	if s.cache.Load(ctx, CacheWeeklyGrid, &cached) {
		return &cached, nil
	}

	start := time.Now()
	slots, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list schedule slots")
	}
	s.metrics.ObserveDBQuery("schedule_slots_list", time.Since(start))

	grid := BuildWeeklyGrid(slots)
	s.cache.Store(ctx, CacheWeeklyGrid, grid)
	return grid, nil
}

// ListByStudent returns the weekly grid of one student.
func (s *ScheduleService) ListByStudent(ctx context.Context, studentID string) (*models.WeeklyGrid, error) {
	slots, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list student schedule", zap.String("student_id", studentID))
	}
	return BuildWeeklyGrid(slots), nil
}

func (s *ScheduleService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, CacheWeeklyGrid)
}

// BuildWeeklyGrid lays slots out over 7 days and the GridFirstHour..GridLastHour range.
// Every slot is kept in the flat list, including those outside the grid hours.
func BuildWeeklyGrid(slots []models.ScheduleSlotDetail) *models.WeeklyGrid {
	grid := &models.WeeklyGrid{
		Days:  make([]models.GridDay, 0, 7),
		Hours: make([]models.GridHour, 0, models.GridLastHour-models.GridFirstHour+1),
		Slots: make([]models.ScheduleSlotDetail, 0, len(slots)),
	}
	for day := 0; day < 7; day++ {
		grid.Days = append(grid.Days, models.GridDay{Day: day, Label: models.WeekdayLabel(day)})
	}
	for hour := models.GridFirstHour; hour <= models.GridLastHour; hour++ {
		grid.Hours = append(grid.Hours, models.GridHour{Hour: hour, Label: models.HourLabel(hour)})
	}

	index := make(map[[2]int]int)
	for _, day := range grid.Days {
		for _, hour := range grid.Hours {
			index[[2]int{day.Day, hour.Hour}] = len(grid.Cells)
			grid.Cells = append(grid.Cells, models.GridCell{Day: day.Day, Hour: hour.Hour, Slots: []models.ScheduleSlotDetail{}})
		}
	}

	for _, slot := range slots {
		slot.DayLabel = models.WeekdayLabel(slot.DayOfWeek)
		slot.HourLabel = models.HourLabel(slot.Hour)
		grid.Slots = append(grid.Slots, slot)
		if i, ok := index[[2]int{slot.DayOfWeek, slot.Hour}]; ok {
			grid.Cells[i].Slots = append(grid.Cells[i].Slots, slot)
		}
	}
	return grid
}
