package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/escola-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.class_offering_id, e.enrollment_date, e.active, e.created_at, e.updated_at,
	s.full_name AS student_name, o.name AS class_name, o.price, o.periodicity
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN class_offerings o ON o.id = e.class_offering_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CreateActive inserts an active enrollment. It reports false without writing
// when the student already has an active enrollment in the same class.
func (r *EnrollmentRepository) CreateActive(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.Active = true
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	const query = `INSERT INTO enrollments (id, student_id, class_offering_id, enrollment_date, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $6)
ON CONFLICT (student_id, class_offering_id) WHERE active DO NOTHING`
	res, err := pick(r.db, exec).ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentID, enrollment.ClassOfferingID, enrollment.EnrollmentDate, now, now)
	if err != nil {
		return false, fmt.Errorf("create enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create enrollment rows affected: %w", err)
	}
	return n == 1, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, class_offering_id, enrollment_date, active, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment joined with student and class data.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment detail: %w", err)
	}
	return &detail, nil
}

// List returns enrollments matching the filter, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)))
	}
	if filter.ClassOfferingID != "" {
		args = append(args, filter.ClassOfferingID)
		conditions = append(conditions, fmt.Sprintf("e.class_offering_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("e.active = $%d", len(args)))
	}

	query := enrollmentDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.enrollment_date DESC, s.full_name ASC"

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		if IsInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Deactivate clears the active flag. Returns sql.ErrNoRows when the enrollment does not exist.
func (r *EnrollmentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE enrollments SET active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	return expectAffected(res, "cancel enrollment")
}
