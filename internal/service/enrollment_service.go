package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type transactor interface {
	WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
}

type enrollmentRepository interface {
	CreateActive(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) (bool, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	Deactivate(ctx context.Context, id string) error
}

type installmentWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, installment *models.Installment) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type classOfferingReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassOffering, error)
}

// EnrollmentService links students to class offerings and opens their billing cycle.
type EnrollmentService struct {
	tx           transactor
	repo         enrollmentRepository
	installments installmentWriter
	students     studentReader
	offerings    classOfferingReader
	calendar     BillingCalendar
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(tx transactor, repo enrollmentRepository, installments installmentWriter, students studentReader, offerings classOfferingReader, calendar BillingCalendar, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		tx:           tx,
		repo:         repo,
		installments: installments,
		students:     students,
		offerings:    offerings,
		calendar:     calendar,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// Enroll creates an active enrollment and its first installment in one transaction.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load student", zap.String("student_id", req.StudentID))
	}
	offering, err := s.offerings.FindByID(ctx, req.ClassOfferingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class offering not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load class offering", zap.String("class_offering_id", req.ClassOfferingID))
	}

	today := s.calendar.Today()
	enrollment := &models.Enrollment{
		StudentID:       req.StudentID,
		ClassOfferingID: req.ClassOfferingID,
		EnrollmentDate:  today,
	}
	first := &models.Installment{
		DueDate: ComputeInitialDueDate(today),
		Amount:  offering.Price,
		Status:  models.InstallmentPending,
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		created, err := s.repo.CreateActive(ctx, tx, enrollment)
		if err != nil {
			return err
		}
		if !created {
			return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
		first.EnrollmentID = enrollment.ID
		return s.installments.Create(ctx, tx, first)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student or class offering not found")
		}
		return nil, passThrough(s.logger, err, "failed to create enrollment",
			zap.String("student_id", req.StudentID), zap.String("class_offering_id", req.ClassOfferingID))
	}

	s.metrics.RecordBillingEvent(BillingEventEnrollmentCreated)
	s.metrics.RecordBillingEvent(BillingEventInstallmentCreated)
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("installment_id", first.ID),
		zap.String("due_date", first.DueDate.String()))

	return &models.EnrollmentResult{Enrollment: enrollment, FirstInstallment: first}, nil
}

// Cancel deactivates an enrollment. Outstanding installments are left untouched.
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, storeFailure(s.logger, err, "failed to cancel enrollment", zap.String("enrollment_id", id))
	}
	s.metrics.RecordBillingEvent(BillingEventEnrollmentCancelled)
	s.logger.Info("enrollment cancelled", zap.String("enrollment_id", id))
	return s.Get(ctx, id)
}

// Get returns an enrollment with student and class data.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load enrollment", zap.String("enrollment_id", id))
	}
	return detail, nil
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list enrollments")
	}
	if items == nil {
		items = []models.EnrollmentDetail{}
	}
	return items, nil
}
