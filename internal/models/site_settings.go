package models

import "time"

// SiteSettings is the single-row school branding configuration.
type SiteSettings struct {
	SchoolName string    `db:"school_name" json:"school_name"`
	LogoURL    *string   `db:"logo_url" json:"logo_url,omitempty"`
	UpdatedBy  *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SiteSettingsRequest replaces the site settings.
type SiteSettingsRequest struct {
	SchoolName string  `json:"school_name" validate:"required,max=120"`
	LogoURL    *string `json:"logo_url" validate:"omitempty,url"`
}
