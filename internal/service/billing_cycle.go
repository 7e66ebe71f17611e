package service

import (
	"time"

	"github.com/noah-isme/escola-api/internal/models"
)

// initialDueDay is the day of month on which every first installment falls.
const initialDueDay = 10

// Clock returns the current instant. Services take one so date rules can be pinned in tests.
type Clock func() time.Time

// BillingCalendar resolves "today" in the school's billing timezone.
type BillingCalendar struct {
	now Clock
	loc *time.Location
}

// NewBillingCalendar constructs a calendar. A nil clock uses time.Now and a nil location UTC.
func NewBillingCalendar(now Clock, loc *time.Location) BillingCalendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return BillingCalendar{now: now, loc: loc}
}

// Today returns the current calendar date in the billing timezone.
func (c BillingCalendar) Today() models.Date {
	now := c.now
	if now == nil {
		now = time.Now
	}
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return models.NewDate(now().In(loc))
}

// ComputeInitialDueDate returns the 10th of the month after ref, whatever the periodicity.
func ComputeInitialDueDate(ref models.Date) models.Date {
	y, m, _ := ref.Date()
	return models.DateOf(y, m+1, initialDueDay)
}

// ComputeNextDueDate advances current by the periodicity's number of months.
// Unknown periodicities advance by one month.
func ComputeNextDueDate(periodicity models.Periodicity, current models.Date) models.Date {
	return addMonths(current, periodicityMonths(periodicity))
}

func periodicityMonths(p models.Periodicity) int {
	switch p {
	case models.PeriodicityQuarterly:
		return 3
	case models.PeriodicitySemiannual:
		return 6
	case models.PeriodicityAnnual:
		return 12
	default:
		return 1
	}
}

// addMonths shifts d by n months, clamping the day to the end of the target month
// (Jan 31 + 1 month = Feb 28/29).
func addMonths(d models.Date, n int) models.Date {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return models.DateOf(first.Year(), first.Month(), day)
}
