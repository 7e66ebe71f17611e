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

const classOfferingColumns = `id, name, price, periodicity, weekly_frequency, created_at, updated_at`

// ClassOfferingRepository persists the class catalog.
type ClassOfferingRepository struct {
	db *sqlx.DB
}

// NewClassOfferingRepository constructs the repository.
func NewClassOfferingRepository(db *sqlx.DB) *ClassOfferingRepository {
	return &ClassOfferingRepository{db: db}
}

// List returns every class offering ordered by name.
func (r *ClassOfferingRepository) List(ctx context.Context) ([]models.ClassOffering, error) {
	query := `SELECT ` + classOfferingColumns + ` FROM class_offerings ORDER BY name ASC`
	var offerings []models.ClassOffering
	if err := r.db.SelectContext(ctx, &offerings, query); err != nil {
		return nil, fmt.Errorf("list class offerings: %w", err)
	}
	return offerings, nil
}

// FindByID returns a class offering or sql.ErrNoRows.
func (r *ClassOfferingRepository) FindByID(ctx context.Context, id string) (*models.ClassOffering, error) {
	query := `SELECT ` + classOfferingColumns + ` FROM class_offerings WHERE id = $1`
	var offering models.ClassOffering
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find class offering: %w", err)
	}
	return &offering, nil
}

// Create inserts a class offering.
func (r *ClassOfferingRepository) Create(ctx context.Context, offering *models.ClassOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	offering.CreatedAt = now
	offering.UpdatedAt = now
	const query = `INSERT INTO class_offerings (id, name, price, periodicity, weekly_frequency, created_at, updated_at)
VALUES (:id, :name, :price, :periodicity, :weekly_frequency, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create class offering: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields. Returns sql.ErrNoRows when absent.
func (r *ClassOfferingRepository) Update(ctx context.Context, offering *models.ClassOffering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_offerings SET name = :name, price = :price, periodicity = :periodicity,
weekly_frequency = :weekly_frequency, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, offering)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update class offering: %w", err)
	}
	return expectAffected(res, "update class offering")
}

// Delete removes a class offering. Offerings referenced by enrollments fail with a foreign key error.
func (r *ClassOfferingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_offerings WHERE id = $1`, id)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete class offering: %w", err)
	}
	return expectAffected(res, "delete class offering")
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
