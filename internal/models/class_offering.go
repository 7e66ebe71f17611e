package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Periodicity is the billing recurrence unit of a class offering.
type Periodicity string

const (
	PeriodicityMonthly    Periodicity = "monthly"
	PeriodicityQuarterly  Periodicity = "quarterly"
	PeriodicitySemiannual Periodicity = "semiannual"
	PeriodicityAnnual     Periodicity = "annual"
)

var periodicityLabels = map[Periodicity]string{
	PeriodicityMonthly:    "Mensal",
	PeriodicityQuarterly:  "Trimestral",
	PeriodicitySemiannual: "Semestral",
	PeriodicityAnnual:     "Anual",
}

// Valid reports whether p is one of the known periodicities.
func (p Periodicity) Valid() bool {
	_, ok := periodicityLabels[p]
	return ok
}

// Label returns the display name, or the raw value when unknown.
func (p Periodicity) Label() string {
	if label, ok := periodicityLabels[p]; ok {
		return label
	}
	return string(p)
}

// ClassOffering is a catalog class with a price and billing periodicity.
type ClassOffering struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Periodicity     Periodicity     `db:"periodicity" json:"periodicity"`
	WeeklyFrequency int             `db:"weekly_frequency" json:"weekly_frequency"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ClassOfferingRequest creates or updates a class offering.
type ClassOfferingRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=120"`
	Price           decimal.Decimal `json:"price" validate:"positive_amount"`
	Periodicity     Periodicity     `json:"periodicity" validate:"required,periodicity"`
	WeeklyFrequency int             `json:"weekly_frequency" validate:"min=1,max=7"`
}
