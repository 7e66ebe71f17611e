package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// LedgerExport is a persisted ledger export job.
type LedgerExport struct {
	ID           string        `db:"id" json:"id"`
	Format       string        `db:"format" json:"format"`
	Filters      ExportFilters `db:"filters" json:"filters"`
	Status       ExportStatus  `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	StorageKey   *string       `db:"storage_key" json:"-"`
	ResultURL    *string       `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string        `db:"created_by" json:"created_by"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finished_at,omitempty"`
}

// ExportFilters are the ledger filters captured with an export, stored as JSONB.
type ExportFilters struct {
	StudentID string `json:"student_id,omitempty"`
	Search    string `json:"search,omitempty"`
}

// Value marshals filters to JSON for persistence.
func (f ExportFilters) Value() (driver.Value, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal export filters: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB filters.
func (f *ExportFilters) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*f = ExportFilters{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportFilters", value)
	}
	if len(data) == 0 {
		*f = ExportFilters{}
		return nil
	}
	return json.Unmarshal(data, f)
}

// LedgerExportRequest asks for an asynchronous ledger export.
type LedgerExportRequest struct {
	Format    string `json:"format" validate:"required,oneof=csv pdf xlsx"`
	StudentID string `json:"student_id"`
	Search    string `json:"search" validate:"max=120"`
}
