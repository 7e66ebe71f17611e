package models

import "time"

// Weekly grid bounds used when rendering schedule slots.
const (
	GridFirstHour = 7
	GridLastHour  = 20
)

var weekdayLabels = [7]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

// WeekdayLabel names a day of week (0 = Sunday).
func WeekdayLabel(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return weekdayLabels[day]
}

// HourLabel formats an hour as "HH:00".
func HourLabel(hour int) string {
	return time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04")
}

// ScheduleSlot reserves a weekly (day, hour) for a student in a class.
type ScheduleSlot struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	ClassOfferingID string    `db:"class_offering_id" json:"class_offering_id"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	Hour            int       `db:"hour" json:"hour"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ScheduleSlotDetail is a slot joined with student and class names.
type ScheduleSlotDetail struct {
	ScheduleSlot
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	DayLabel    string `db:"-" json:"day_label"`
	HourLabel   string `db:"-" json:"hour_label"`
}

// CreateSlotRequest books a slot.
type CreateSlotRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	ClassOfferingID string `json:"class_offering_id" validate:"required"`
	DayOfWeek       *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	Hour            *int   `json:"hour" validate:"required,min=0,max=23"`
}

// GridDay is a column of the weekly grid.
type GridDay struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
}

// GridHour is a row of the weekly grid.
type GridHour struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
}

// GridCell holds the slots booked at one (day, hour).
type GridCell struct {
	Day   int                  `json:"day"`
	Hour  int                  `json:"hour"`
	Slots []ScheduleSlotDetail `json:"slots"`
}

// WeeklyGrid is the 7 day by N hour schedule view plus the flat slot list.
// Slots outside the grid hours appear only in Slots.
type WeeklyGrid struct {
	Days  []GridDay            `json:"days"`
	Hours []GridHour           `json:"hours"`
	Cells []GridCell           `json:"cells"`
	Slots []ScheduleSlotDetail `json:"slots"`
}
