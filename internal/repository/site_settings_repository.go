package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/escola-api/internal/models"
)

// SiteSettingsRepository reads and writes the single site_settings row.
type SiteSettingsRepository struct {
	db *sqlx.DB
}

// NewSiteSettingsRepository constructs the repository.
func NewSiteSettingsRepository(db *sqlx.DB) *SiteSettingsRepository {
	return &SiteSettingsRepository{db: db}
}

// Get returns the settings or sql.ErrNoRows when never saved.
func (r *SiteSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	const query = `SELECT school_name, logo_url, updated_by, updated_at FROM site_settings WHERE id = 1`
	var settings models.SiteSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &settings, nil
}

// Upsert stores the settings row.
func (r *SiteSettingsRepository) Upsert(ctx context.Context, settings *models.SiteSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO site_settings (id, school_name, logo_url, updated_by, updated_at)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET school_name = EXCLUDED.school_name, logo_url = EXCLUDED.logo_url,
	updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, settings.SchoolName, settings.LogoURL, settings.UpdatedBy, settings.UpdatedAt); err != nil {
		return fmt.Errorf("upsert site settings: %w", err)
	}
	return nil
}
