package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the persisted lifecycle state of a billing installment.
type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentOverdue   InstallmentStatus = "overdue"
	InstallmentCancelled InstallmentStatus = "cancelled"
)

var installmentStatusLabels = map[InstallmentStatus]string{
	InstallmentPending:   "Pendente",
	InstallmentPaid:      "Pago",
	InstallmentOverdue:   "Atrasado",
	InstallmentCancelled: "Cancelado",
}

// Label returns the display text for s.
func (s InstallmentStatus) Label() string {
	if label, ok := installmentStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s InstallmentStatus) Valid() bool {
	_, ok := installmentStatusLabels[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s InstallmentStatus) Terminal() bool {
	return s == InstallmentPaid || s == InstallmentCancelled
}

// Payable reports whether a payment may be recorded against s.
func (s InstallmentStatus) Payable() bool {
	return s == InstallmentPending || s == InstallmentOverdue
}

// DisplayStatus derives the status shown to users: a pending installment whose
// due date is before today is presented as overdue.
func DisplayStatus(status InstallmentStatus, due, today Date) InstallmentStatus {
	if status == InstallmentPending && due.Before(today) {
		return InstallmentOverdue
	}
	return status
}

// Installment is one payable period of an enrollment.
type Installment struct {
	ID           string            `db:"id" json:"id"`
	EnrollmentID string            `db:"enrollment_id" json:"enrollment_id"`
	DueDate      Date              `db:"due_date" json:"due_date"`
	Amount       decimal.Decimal   `db:"amount" json:"amount"`
	Status       InstallmentStatus `db:"status" json:"status"`
	PaymentDate  *Date             `db:"payment_date" json:"payment_date,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// InstallmentDetail is a ledger row joined with enrollment, student and class data.
type InstallmentDetail struct {
	Installment
	StudentID        string      `db:"student_id" json:"student_id"`
	StudentName      string      `db:"student_name" json:"student_name"`
	ClassOfferingID  string      `db:"class_offering_id" json:"class_offering_id"`
	ClassName        string      `db:"class_name" json:"class_name"`
	Periodicity      Periodicity `db:"periodicity" json:"periodicity"`
	EnrollmentActive bool        `db:"enrollment_active" json:"enrollment_active"`

	DisplayStatus InstallmentStatus `db:"-" json:"display_status"`
	StatusLabel   string            `db:"-" json:"status_label"`
}

// Decorate fills the derived display fields relative to today.
func (d *InstallmentDetail) Decorate(today Date) {
	d.DisplayStatus = DisplayStatus(d.Status, d.DueDate, today)
	d.StatusLabel = d.DisplayStatus.Label()
}

// PaymentContext is the locked view of an installment used while recording a payment.
type PaymentContext struct {
	Installment
	EnrollmentActive bool            `db:"enrollment_active"`
	OfferingPrice    decimal.Decimal `db:"offering_price"`
	Periodicity      Periodicity     `db:"periodicity"`
}

// InstallmentFilter narrows ledger listings. Search matches student or class names.
type InstallmentFilter struct {
	StudentID    string
	EnrollmentID string
	Search       string
}

// EditAmountRequest overwrites the amount of an open installment.
type EditAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CancelInstallmentResult reports whether a cancellation took effect.
type CancelInstallmentResult struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// PaymentResult is the settled installment together with the successor it generated.
type PaymentResult struct {
	Installment     *Installment `json:"installment"`
	NextInstallment *Installment `json:"next_installment"`
}
