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

const (
	studentColumns  = `id, full_name, email, phone, cpf, rg, address, birth_date, is_minor, guardian_id, created_at, updated_at`
	guardianColumns = `id, full_name, email, phone, cpf, rg, address, birth_date, created_at, updated_at`
)

// StudentRepository manages persistence for students and their guardians.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns a page of students ordered by name, with the total match count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := ""
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		where = ` WHERE LOWER(full_name) LIKE $1 ESCAPE '\' OR cpf LIKE $1 ESCAPE '\'`
	}
	page, size := models.NormalizePaging(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM students%s ORDER BY full_name ASC LIMIT %d OFFSET %d`, studentColumns, where, size, (page-1)*size)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByCPF reports whether another student already uses cpf.
func (r *StudentRepository) ExistsByCPF(ctx context.Context, cpf, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE cpf = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, cpf, excludeID); err != nil {
		return false, fmt.Errorf("check student cpf: %w", err)
	}
	return exists, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, email, phone, cpf, rg, address, birth_date, is_minor, guardian_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := pick(r.db, exec).ExecContext(ctx, query,
		student.ID, student.FullName, student.Email, student.Phone, student.CPF, student.RG, student.Address,
		student.BirthDate, student.IsMinor, student.GuardianID, student.CreatedAt, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites the mutable student fields.
func (r *StudentRepository) Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = $2, email = $3, phone = $4, cpf = $5, rg = $6, address = $7,
	birth_date = $8, is_minor = $9, guardian_id = $10, updated_at = $11 WHERE id = $1`
	res, err := pick(r.db, exec).ExecContext(ctx, query,
		student.ID, student.FullName, student.Email, student.Phone, student.CPF, student.RG, student.Address,
		student.BirthDate, student.IsMinor, student.GuardianID, student.UpdatedAt)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res, "update student")
}

// UpdateEmail sets the contact email of a student.
func (r *StudentRepository) UpdateEmail(ctx context.Context, exec sqlx.ExtContext, id, email string) error {
	const query = `UPDATE students SET email = $2, updated_at = $3 WHERE id = $1`
	res, err := pick(r.db, exec).ExecContext(ctx, query, id, email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update student email: %w", err)
	}
	return expectAffected(res, "update student email")
}

// Delete removes a student and returns the guardian it referenced, if any.
func (r *StudentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) (*string, error) {
	const query = `DELETE FROM students WHERE id = $1 RETURNING guardian_id`
	var guardianID *string
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &guardianID, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("delete student: %w", err)
	}
	return guardianID, nil
}

// FindGuardian returns a guardian or sql.ErrNoRows.
func (r *StudentRepository) FindGuardian(ctx context.Context, id string) (*models.Guardian, error) {
	query := `SELECT ` + guardianColumns + ` FROM guardians WHERE id = $1`
	var guardian models.Guardian
	if err := r.db.GetContext(ctx, &guardian, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find guardian: %w", err)
	}
	return &guardian, nil
}

// SaveGuardian inserts the guardian when ID is empty and updates it otherwise.
func (r *StudentRepository) SaveGuardian(ctx context.Context, exec sqlx.ExtContext, guardian *models.Guardian) error {
	now := time.Now().UTC()
	guardian.UpdatedAt = now
	if guardian.ID == "" {
		guardian.ID = uuid.NewString()
		guardian.CreatedAt = now
		const insert = `INSERT INTO guardians (id, full_name, email, phone, cpf, rg, address, birth_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		if _, err := pick(r.db, exec).ExecContext(ctx, insert,
			guardian.ID, guardian.FullName, guardian.Email, guardian.Phone, guardian.CPF, guardian.RG,
			guardian.Address, guardian.BirthDate, guardian.CreatedAt, guardian.UpdatedAt); err != nil {
			return fmt.Errorf("create guardian: %w", err)
		}
		return nil
	}
	const update = `UPDATE guardians SET full_name = $2, email = $3, phone = $4, cpf = $5, rg = $6, address = $7,
	birth_date = $8, updated_at = $9 WHERE id = $1`
	if _, err := pick(r.db, exec).ExecContext(ctx, update,
		guardian.ID, guardian.FullName, guardian.Email, guardian.Phone, guardian.CPF, guardian.RG,
		guardian.Address, guardian.BirthDate, guardian.UpdatedAt); err != nil {
		return fmt.Errorf("update guardian: %w", err)
	}
	return nil
}

// DeleteOrphanGuardian removes the guardian when no student references it anymore.
func (r *StudentRepository) DeleteOrphanGuardian(ctx context.Context, exec sqlx.ExtContext, guardianID string) error {
	const query = `DELETE FROM guardians g WHERE g.id = $1 AND NOT EXISTS (SELECT 1 FROM students s WHERE s.guardian_id = g.id)`
	if _, err := pick(r.db, exec).ExecContext(ctx, query, guardianID); err != nil {
		return fmt.Errorf("delete orphan guardian: %w", err)
	}
	return nil
}
