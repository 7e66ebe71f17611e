package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment links a student to a class offering and gates billing.
type Enrollment struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	ClassOfferingID string    `db:"class_offering_id" json:"class_offering_id"`
	EnrollmentDate  Date      `db:"enrollment_date" json:"enrollment_date"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches an enrollment with student and class data.
type EnrollmentDetail struct {
	Enrollment
	StudentName string          `db:"student_name" json:"student_name"`
	ClassName   string          `db:"class_name" json:"class_name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Periodicity Periodicity     `db:"periodicity" json:"periodicity"`
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID       string
	ClassOfferingID string
	Active          *bool
}

// EnrollRequest creates an enrollment.
type EnrollRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	ClassOfferingID string `json:"class_offering_id" validate:"required"`
}

// EnrollmentResult is returned by Enroll with the generated first installment.
type EnrollmentResult struct {
	Enrollment       *Enrollment  `json:"enrollment"`
	FirstInstallment *Installment `json:"first_installment"`
}
