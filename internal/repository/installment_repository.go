package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/escola-api/internal/models"
)

const installmentColumns = `id, enrollment_id, due_date, amount, status, payment_date, created_at, updated_at`

// InstallmentRepository persists billing installments.
type InstallmentRepository struct {
	db *sqlx.DB
}

// NewInstallmentRepository constructs the repository.
func NewInstallmentRepository(db *sqlx.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

// Create inserts an installment, optionally inside a transaction.
func (r *InstallmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, installment *models.Installment) error {
	if installment.ID == "" {
		installment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	installment.CreatedAt = now
	installment.UpdatedAt = now

	const query = `INSERT INTO billing_installments (id, enrollment_id, due_date, amount, status, payment_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := pick(r.db, exec).ExecContext(ctx, query,
		installment.ID,
		installment.EnrollmentID,
		installment.DueDate,
		installment.Amount,
		installment.Status,
		installment.PaymentDate,
		installment.CreatedAt,
		installment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create installment: %w", err)
	}
	return nil
}

// FindByID returns an installment or sql.ErrNoRows.
func (r *InstallmentRepository) FindByID(ctx context.Context, id string) (*models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM billing_installments WHERE id = $1`
	var installment models.Installment
	if err := r.db.GetContext(ctx, &installment, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find installment: %w", err)
	}
	return &installment, nil
}

// LockForPayment loads an installment with its enrollment state and the offering's
// current price and periodicity, holding row locks until the transaction ends.
func (r *InstallmentRepository) LockForPayment(ctx context.Context, exec sqlx.ExtContext, id string) (*models.PaymentContext, error) {
	const query = `SELECT i.id, i.enrollment_id, i.due_date, i.amount, i.status, i.payment_date, i.created_at, i.updated_at,
	e.active AS enrollment_active, o.price AS offering_price, o.periodicity
FROM billing_installments i
JOIN enrollments e ON e.id = i.enrollment_id
JOIN class_offerings o ON o.id = e.class_offering_id
WHERE i.id = $1
FOR UPDATE OF i, e`
	var pc models.PaymentContext
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &pc, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock installment: %w", err)
	}
	return &pc, nil
}

// MarkPaid sets status paid and the payment date.
func (r *InstallmentRepository) MarkPaid(ctx context.Context, exec sqlx.ExtContext, id string, paidOn models.Date) error {
	const query = `UPDATE billing_installments SET status = $2, payment_date = $3, updated_at = $4 WHERE id = $1`
	if _, err := pick(r.db, exec).ExecContext(ctx, query, id, models.InstallmentPaid, paidOn, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark installment paid: %w", err)
	}
	return nil
}

// Cancel moves a pending or overdue installment to cancelled. It reports false when no row changed.
func (r *InstallmentRepository) Cancel(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE billing_installments SET status = $2, updated_at = $3 WHERE id = $1 AND status IN ($4, $5)`
	return r.conditionalUpdate(ctx, "cancel installment", query, id, models.InstallmentCancelled, time.Now().UTC(), models.InstallmentPending, models.InstallmentOverdue)
}

// UpdateAmount overwrites the amount of a pending or overdue installment. It reports false when no row changed.
func (r *InstallmentRepository) UpdateAmount(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	const query = `UPDATE billing_installments SET amount = $2, updated_at = $3 WHERE id = $1 AND status IN ($4, $5)`
	return r.conditionalUpdate(ctx, "update installment amount", query, id, amount, time.Now().UTC(), models.InstallmentPending, models.InstallmentOverdue)
}

// MarkOverdue moves a pending installment to overdue. It reports false when no row changed.
func (r *InstallmentRepository) MarkOverdue(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE billing_installments SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	return r.conditionalUpdate(ctx, "mark installment overdue", query, id, models.InstallmentOverdue, time.Now().UTC(), models.InstallmentPending)
}

// MarkOverdueBefore persists overdue status for every pending installment due before the given day.
func (r *InstallmentRepository) MarkOverdueBefore(ctx context.Context, day models.Date) (int64, error) {
	const query = `UPDATE billing_installments SET status = $1, updated_at = $2 WHERE status = $3 AND due_date < $4`
	res, err := r.db.ExecContext(ctx, query, models.InstallmentOverdue, time.Now().UTC(), models.InstallmentPending, day)
	if err != nil {
		return 0, fmt.Errorf("sweep overdue installments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep overdue rows affected: %w", err)
	}
	return n, nil
}

// List returns ledger rows ordered by due date ascending.
func (r *InstallmentRepository) List(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error) {
	var query strings.Builder
	query.WriteString(`SELECT i.id, i.enrollment_id, i.due_date, i.amount, i.status, i.payment_date, i.created_at, i.updated_at,
	e.student_id, s.full_name AS student_name, e.class_offering_id, o.name AS class_name, o.periodicity,
	e.active AS enrollment_active
FROM billing_installments i
JOIN enrollments e ON e.id = i.enrollment_id
JOIN students s ON s.id = e.student_id
JOIN class_offerings o ON o.id = e.class_offering_id
WHERE 1=1`)

	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, " AND e.student_id = $%d", len(args))
	}
	if filter.EnrollmentID != "" {
		args = append(args, filter.EnrollmentID)
		fmt.Fprintf(&query, " AND i.enrollment_id = $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		fmt.Fprintf(&query, ` AND (LOWER(s.full_name) LIKE $%d ESCAPE '\' OR LOWER(o.name) LIKE $%d ESCAPE '\')`, len(args), len(args))
	}
	query.WriteString(" ORDER BY i.due_date ASC, i.created_at ASC")

	var rows []models.InstallmentDetail
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		if IsInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return rows, nil
}

func (r *InstallmentRepository) conditionalUpdate(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if missing(err) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n > 0, nil
}
