package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/escola-api/internal/models"
)

// memStore backs the in-memory billing repositories used by service tests.
type memStore struct {
	students     map[string]*models.Student
	offerings    map[string]*models.ClassOffering
	enrollments  map[string]*models.Enrollment
	installments map[string]*models.Installment
	seq          int

	failInstallmentCreate error
}

func newMemStore() *memStore {
	return &memStore{
		students: map[string]*models.Student{
			"student-1": {ID: "student-1", FullName: "Ana Souza"},
			"student-2": {ID: "student-2", FullName: "Bruno Lima"},
		},
		offerings: map[string]*models.ClassOffering{
			"piano":  {ID: "piano", Name: "Piano", Price: decimal.RequireFromString("150.00"), Periodicity: models.PeriodicityMonthly, WeeklyFrequency: 2},
			"violin": {ID: "violin", Name: "Violino", Price: decimal.RequireFromString("420.00"), Periodicity: models.PeriodicityQuarterly, WeeklyFrequency: 1},
		},
		enrollments:  map[string]*models.Enrollment{},
		installments: map[string]*models.Installment{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) installmentsOf(enrollmentID string) []models.Installment {
	var out []models.Installment
	for _, inst := range m.installments {
		if inst.EnrollmentID == enrollmentID {
			out = append(out, *inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	f.calls++
	return fn(nil)
}

type memStudents struct{ *memStore }

func (m memStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type memOfferings struct{ *memStore }

func (m memOfferings) FindByID(ctx context.Context, id string) (*models.ClassOffering, error) {
	if o, ok := m.offerings[id]; ok {
		c := *o
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type memEnrollments struct{ *memStore }

func (m memEnrollments) CreateActive(ctx context.Context, exec sqlx.ExtContext, e *models.Enrollment) (bool, error) {
	for _, existing := range m.enrollments {
		if existing.Active && existing.StudentID == e.StudentID && existing.ClassOfferingID == e.ClassOfferingID {
			return false, nil
		}
	}
	if e.ID == "" {
		e.ID = m.nextID("enr")
	}
	e.Active = true
	e.CreatedAt = time.Now().UTC()
	c := *e
	m.enrollments[e.ID] = &c
	return true, nil
}

func (m memEnrollments) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m memEnrollments) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.detail(e), nil
}

func (m memEnrollments) detail(e *models.Enrollment) *models.EnrollmentDetail {
	d := &models.EnrollmentDetail{Enrollment: *e}
	if s, ok := m.students[e.StudentID]; ok {
		d.StudentName = s.FullName
	}
	if o, ok := m.offerings[e.ClassOfferingID]; ok {
		d.ClassName = o.Name
		d.Price = o.Price
		d.Periodicity = o.Periodicity
	}
	return d
}

func (m memEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassOfferingID != "" && e.ClassOfferingID != filter.ClassOfferingID {
			continue
		}
		if filter.Active != nil && e.Active != *filter.Active {
			continue
		}
		out = append(out, *m.detail(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memEnrollments) Deactivate(ctx context.Context, id string) error {
	e, ok := m.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Active = false
	return nil
}

type memInstallments struct{ *memStore }

func (m memInstallments) Create(ctx context.Context, exec sqlx.ExtContext, inst *models.Installment) error {
	if m.failInstallmentCreate != nil {
		return m.failInstallmentCreate
	}
	if inst.ID == "" {
		inst.ID = m.nextID("inst")
	}
	inst.CreatedAt = time.Now().UTC()
	c := *inst
	m.installments[inst.ID] = &c
	return nil
}

func (m memInstallments) FindByID(ctx context.Context, id string) (*models.Installment, error) {
	if inst, ok := m.installments[id]; ok {
		c := *inst
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m memInstallments) LockForPayment(ctx context.Context, exec sqlx.ExtContext, id string) (*models.PaymentContext, error) {
	inst, ok := m.installments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	e := m.enrollments[inst.EnrollmentID]
	o := m.offerings[e.ClassOfferingID]
	return &models.PaymentContext{
		Installment:      *inst,
		EnrollmentActive: e.Active,
		OfferingPrice:    o.Price,
		Periodicity:      o.Periodicity,
	}, nil
}

func (m memInstallments) MarkPaid(ctx context.Context, exec sqlx.ExtContext, id string, paidOn models.Date) error {
	inst := m.installments[id]
	inst.Status = models.InstallmentPaid
	inst.PaymentDate = &paidOn
	return nil
}

func (m memInstallments) Cancel(ctx context.Context, id string) (bool, error) {
	inst, ok := m.installments[id]
	if !ok || !inst.Status.Payable() {
		return false, nil
	}
	inst.Status = models.InstallmentCancelled
	return true, nil
}

func (m memInstallments) UpdateAmount(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	inst, ok := m.installments[id]
	if !ok || !inst.Status.Payable() {
		return false, nil
	}
	inst.Amount = amount
	return true, nil
}

func (m memInstallments) MarkOverdue(ctx context.Context, id string) (bool, error) {
	inst, ok := m.installments[id]
	if !ok || inst.Status != models.InstallmentPending {
		return false, nil
	}
	inst.Status = models.InstallmentOverdue
	return true, nil
}

func (m memInstallments) MarkOverdueBefore(ctx context.Context, day models.Date) (int64, error) {
	var n int64
	for _, inst := range m.installments {
		if inst.Status == models.InstallmentPending && inst.DueDate.Before(day) {
			inst.Status = models.InstallmentOverdue
			n++
		}
	}
	return n, nil
}

func (m memInstallments) List(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []models.InstallmentDetail
	for _, inst := range m.installments {
		e := m.enrollments[inst.EnrollmentID]
		s := m.students[e.StudentID]
		o := m.offerings[e.ClassOfferingID]
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.EnrollmentID != "" && inst.EnrollmentID != filter.EnrollmentID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.FullName), search) && !strings.Contains(strings.ToLower(o.Name), search) {
			continue
		}
		out = append(out, models.InstallmentDetail{
			Installment:      *inst,
			StudentID:        e.StudentID,
			StudentName:      s.FullName,
			ClassOfferingID:  o.ID,
			ClassName:        o.Name,
			Periodicity:      o.Periodicity,
			EnrollmentActive: e.Active,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func fixedCalendar(year int, month time.Month, day int) BillingCalendar {
	instant := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return NewBillingCalendar(func() time.Time { return instant }, time.UTC)
}
