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

const ledgerExportColumns = `id, format, filters, status, progress, storage_key, result_url, error_message, created_by, created_at, updated_at, finished_at`

// LedgerExportRepository persists ledger export jobs.
type LedgerExportRepository struct {
	db *sqlx.DB
}

// NewLedgerExportRepository constructs the repository.
func NewLedgerExportRepository(db *sqlx.DB) *LedgerExportRepository {
	return &LedgerExportRepository{db: db}
}

// Create inserts a queued export.
func (r *LedgerExportRepository) Create(ctx context.Context, job *models.LedgerExport) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	const query = `INSERT INTO ledger_exports (id, format, filters, status, progress, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.Format, job.Filters, job.Status, job.Progress, job.CreatedBy, job.CreatedAt, job.UpdatedAt); err != nil {
		return fmt.Errorf("create ledger export: %w", err)
	}
	return nil
}

// FindByID returns an export or sql.ErrNoRows.
func (r *LedgerExportRepository) FindByID(ctx context.Context, id string) (*models.LedgerExport, error) {
	query := `SELECT ` + ledgerExportColumns + ` FROM ledger_exports WHERE id = $1`
	var job models.LedgerExport
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find ledger export: %w", err)
	}
	return &job, nil
}

// MarkProcessing flags an export as picked up by a worker.
func (r *LedgerExportRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE ledger_exports SET status = $2, progress = 10, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusProcessing, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark ledger export processing: %w", err)
	}
	return nil
}

// MarkFinished records the stored object and its signed download URL.
func (r *LedgerExportRepository) MarkFinished(ctx context.Context, id, storageKey, resultURL string) error {
	now := time.Now().UTC()
	const query = `UPDATE ledger_exports SET status = $2, progress = 100, storage_key = $3, result_url = $4,
	error_message = NULL, updated_at = $5, finished_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusFinished, storageKey, resultURL, now); err != nil {
		return fmt.Errorf("mark ledger export finished: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure.
func (r *LedgerExportRepository) MarkFailed(ctx context.Context, id, message string) error {
	now := time.Now().UTC()
	const query = `UPDATE ledger_exports SET status = $2, error_message = $3, updated_at = $4, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusFailed, message, now); err != nil {
		return fmt.Errorf("mark ledger export failed: %w", err)
	}
	return nil
}

// ListQueued returns queued exports oldest first, used to resume work after a restart.
func (r *LedgerExportRepository) ListQueued(ctx context.Context, limit int) ([]models.LedgerExport, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + ledgerExportColumns + ` FROM ledger_exports WHERE status = $1 ORDER BY created_at ASC LIMIT $2`
	var jobs []models.LedgerExport
	if err := r.db.SelectContext(ctx, &jobs, query, models.ExportStatusQueued, limit); err != nil {
		return nil, fmt.Errorf("list queued ledger exports: %w", err)
	}
	return jobs, nil
}

// ListExpired returns finished exports with a stored object older than cutoff.
func (r *LedgerExportRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.LedgerExport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + ledgerExportColumns + ` FROM ledger_exports
WHERE status = $1 AND storage_key IS NOT NULL AND finished_at < $2 ORDER BY finished_at ASC LIMIT $3`
	var jobs []models.LedgerExport
	if err := r.db.SelectContext(ctx, &jobs, query, models.ExportStatusFinished, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list expired ledger exports: %w", err)
	}
	return jobs, nil
}

// ClearResult forgets the stored object of an expired export.
func (r *LedgerExportRepository) ClearResult(ctx context.Context, id string) error {
	const query = `UPDATE ledger_exports SET storage_key = NULL, result_url = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear ledger export result: %w", err)
	}
	return nil
}
