package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type installmentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, installment *models.Installment) error
	FindByID(ctx context.Context, id string) (*models.Installment, error)
	LockForPayment(ctx context.Context, exec sqlx.ExtContext, id string) (*models.PaymentContext, error)
	MarkPaid(ctx context.Context, exec sqlx.ExtContext, id string, paidOn models.Date) error
	Cancel(ctx context.Context, id string) (bool, error)
	UpdateAmount(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
	MarkOverdue(ctx context.Context, id string) (bool, error)
	MarkOverdueBefore(ctx context.Context, day models.Date) (int64, error)
	List(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error)
}

type enrollmentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// BillingService advances the billing cycle and serves the installment ledger.
type BillingService struct {
	tx          transactor
	repo        installmentRepository
	enrollments enrollmentLookup
	students    studentReader
	calendar    BillingCalendar
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewBillingService constructs BillingService.
func NewBillingService(tx transactor, repo installmentRepository, enrollments enrollmentLookup, students studentReader, calendar BillingCalendar, metrics *MetricsService, logger *zap.Logger) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		tx:          tx,
		repo:        repo,
		enrollments: enrollments,
		students:    students,
		calendar:    calendar,
		metrics:     metrics,
		logger:      logger,
	}
}

// RecordPayment settles an installment and creates its successor at the offering's
// current price. Both writes commit together.
func (s *BillingService) RecordPayment(ctx context.Context, id string) (*models.PaymentResult, error) {
	paidOn := s.calendar.Today()
	var result models.PaymentResult

	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		pc, err := s.repo.LockForPayment(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "installment not found")
			}
			return err
		}
		if !pc.EnrollmentActive {
			return appErrors.Clone(appErrors.ErrEnrollmentInactive, "")
		}
		if !pc.Status.Payable() {
			return appErrors.Clone(appErrors.ErrInstallmentSettled, "installment is already "+string(pc.Status))
		}
		if err := s.repo.MarkPaid(ctx, tx, id, paidOn); err != nil {
			return err
		}

		paid := pc.Installment
		paid.Status = models.InstallmentPaid
		paid.PaymentDate = &paidOn

		next := &models.Installment{
			EnrollmentID: pc.EnrollmentID,
			DueDate:      ComputeNextDueDate(pc.Periodicity, pc.DueDate),
			Amount:       pc.OfferingPrice,
			Status:       models.InstallmentPending,
		}
		if err := s.repo.Create(ctx, tx, next); err != nil {
			return err
		}
		result = models.PaymentResult{Installment: &paid, NextInstallment: next}
		return nil
	})
	if err != nil {
		return nil, passThrough(s.logger, err, "failed to record payment", zap.String("installment_id", id))
	}

	s.metrics.RecordBillingEvent(BillingEventPaymentRecorded)
	s.metrics.RecordBillingEvent(BillingEventInstallmentCreated)
	s.logger.Info("payment recorded",
		zap.String("installment_id", id),
		zap.String("payment_date", paidOn.String()),
		zap.String("next_installment_id", result.NextInstallment.ID),
		zap.String("next_due_date", result.NextInstallment.DueDate.String()))
	return &result, nil
}

// CancelInstallment cancels an unpaid installment. It returns false, leaving the row
// unchanged, when the installment is already paid. Cancelling a cancelled installment
// is a no-op.
func (s *BillingService) CancelInstallment(ctx context.Context, id string) (bool, error) {
	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return false, storeFailure(s.logger, err, "failed to cancel installment", zap.String("installment_id", id))
	}
	if !cancelled {
		current, err := s.find(ctx, id)
		if err != nil {
			return false, err
		}
		if current.Status == models.InstallmentCancelled {
			return true, nil
		}
		s.logger.Info("cancel rejected for paid installment", zap.String("installment_id", id))
		return false, nil
	}
	s.metrics.RecordBillingEvent(BillingEventInstallmentCancelled)
	s.logger.Info("installment cancelled", zap.String("installment_id", id))
	return true, nil
}

// EditAmount overwrites the amount of a pending or overdue installment. Due date and status are kept.
func (s *BillingService) EditAmount(ctx context.Context, id string, amount decimal.Decimal) (*models.Installment, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}
	updated, err := s.repo.UpdateAmount(ctx, id, amount)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to update installment amount", zap.String("installment_id", id))
	}
	if !updated {
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.ErrInstallmentSettled, "only pending or overdue installments can be edited, installment is "+string(current.Status))
	}
	s.metrics.RecordBillingEvent(BillingEventAmountEdited)
	s.logger.Info("installment amount edited", zap.String("installment_id", id), zap.String("amount", amount.StringFixed(2)))
	return s.find(ctx, id)
}

// MarkOverdue persists the overdue status of a pending installment. Marking an
// installment that is already overdue is a no-op.
func (s *BillingService) MarkOverdue(ctx context.Context, id string) (*models.Installment, error) {
	changed, err := s.repo.MarkOverdue(ctx, id)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to mark installment overdue", zap.String("installment_id", id))
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed && current.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInstallmentSettled, "installment is already "+string(current.Status))
	}
	if changed {
		s.metrics.RecordBillingEvent(BillingEventInstallmentOverdue)
		s.logger.Info("installment marked overdue", zap.String("installment_id", id))
	}
	return current, nil
}

// SweepOverdue persists overdue status for every pending installment due before today.
func (s *BillingService) SweepOverdue(ctx context.Context) (int64, error) {
	today := s.calendar.Today()
	n, err := s.repo.MarkOverdueBefore(ctx, today)
	if err != nil {
		return 0, storeFailure(s.logger, err, "failed to sweep overdue installments")
	}
	s.metrics.AddBillingEvents(BillingEventInstallmentOverdue, uint64(n))
	s.logger.Info("overdue sweep finished", zap.String("reference_date", today.String()), zap.Int64("updated", n))
	return n, nil
}

// ListInstallments returns the ledger ordered by due date with derived display status.
func (s *BillingService) ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list installments")
	}
	today := s.calendar.Today()
	for i := range rows {
		rows[i].Decorate(today)
	}
	if rows == nil {
		rows = []models.InstallmentDetail{}
	}
	return rows, nil
}

// ListByEnrollment returns the ledger of one enrollment.
func (s *BillingService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.InstallmentDetail, error) {
	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load enrollment", zap.String("enrollment_id", enrollmentID))
	}
	return s.ListInstallments(ctx, models.InstallmentFilter{EnrollmentID: enrollmentID})
}

// ListByStudent returns every installment of a student across enrollments.
func (s *BillingService) ListByStudent(ctx context.Context, studentID string) ([]models.InstallmentDetail, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load student", zap.String("student_id", studentID))
	}
	return s.ListInstallments(ctx, models.InstallmentFilter{StudentID: studentID})
}

func (s *BillingService) find(ctx context.Context, id string) (*models.Installment, error) {
	installment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load installment", zap.String("installment_id", id))
	}
	return installment, nil
}
