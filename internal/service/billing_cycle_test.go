package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/escola-api/internal/models"
)

func TestComputeInitialDueDate(t *testing.T) {
	cases := map[string]struct {
		ref  models.Date
		want string
	}{
		"mid month":       {models.DateOf(2024, time.January, 15), "2024-02-10"},
		"after the tenth": {models.DateOf(2024, time.March, 31), "2024-04-10"},
		"december":        {models.DateOf(2023, time.December, 2), "2024-01-10"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeInitialDueDate(tc.ref).String())
		})
	}
}

func TestComputeNextDueDate(t *testing.T) {
	base := models.DateOf(2024, time.February, 10)
	cases := []struct {
		periodicity models.Periodicity
		want        string
	}{
		{models.PeriodicityMonthly, "2024-03-10"},
		{models.PeriodicityQuarterly, "2024-05-10"},
		{models.PeriodicitySemiannual, "2024-08-10"},
		{models.PeriodicityAnnual, "2025-02-10"},
		{models.Periodicity("weekly"), "2024-03-10"},
		{models.Periodicity(""), "2024-03-10"},
	}
	for _, tc := range cases {
		t.Run(string(tc.periodicity), func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeNextDueDate(tc.periodicity, base).String())
		})
	}
}

func TestComputeNextDueDateClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, "2024-02-29", ComputeNextDueDate(models.PeriodicityMonthly, models.DateOf(2024, time.January, 31)).String())
	assert.Equal(t, "2023-02-28", ComputeNextDueDate(models.PeriodicityMonthly, models.DateOf(2023, time.January, 31)).String())
	assert.Equal(t, "2025-02-28", ComputeNextDueDate(models.PeriodicityAnnual, models.DateOf(2024, time.February, 29)).String())
	assert.Equal(t, "2024-06-30", ComputeNextDueDate(models.PeriodicityQuarterly, models.DateOf(2024, time.March, 31)).String())
}

func TestBillingCalendarTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	instant := time.Date(2024, 2, 10, 1, 30, 0, 0, time.UTC)
	cal := NewBillingCalendar(func() time.Time { return instant }, loc)
	assert.Equal(t, "2024-02-09", cal.Today().String())

	utc := NewBillingCalendar(func() time.Time { return instant }, nil)
	assert.Equal(t, "2024-02-10", utc.Today().String())
}
