package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/escola-api/internal/models"
)

// ScheduleSlotRepository persists weekly schedule slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs the repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// Create books a slot. It reports false when the student already holds the same day and hour.
func (r *ScheduleSlotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) (bool, error) {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO schedule_slots (id, student_id, class_offering_id, day_of_week, hour, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, day_of_week, hour) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, slot.ID, slot.StudentID, slot.ClassOfferingID, slot.DayOfWeek, slot.Hour, slot.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("create schedule slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create schedule slot rows affected: %w", err)
	}
	return n == 1, nil
}

// Delete removes a slot. Returns sql.ErrNoRows when it did not exist.
func (r *ScheduleSlotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete schedule slot: %w", err)
	}
	return expectAffected(res, "delete schedule slot")
}

// List returns slots with student and class names, optionally for a single student.
func (r *ScheduleSlotRepository) List(ctx context.Context, studentID string) ([]models.ScheduleSlotDetail, error) {
	query := `SELECT ss.id, ss.student_id, ss.class_offering_id, ss.day_of_week, ss.hour, ss.created_at,
	s.full_name AS student_name, o.name AS class_name
FROM schedule_slots ss
JOIN students s ON s.id = ss.student_id
JOIN class_offerings o ON o.id = ss.class_offering_id`
	var args []interface{}
	if studentID != "" {
		query += " WHERE ss.student_id = $1"
		args = append(args, studentID)
	}
	query += " ORDER BY ss.day_of_week ASC, ss.hour ASC, s.full_name ASC"

	var slots []models.ScheduleSlotDetail
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		if IsInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}
