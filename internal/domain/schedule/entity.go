package schedule

import "time"

// ShiftStatus is the roster classification of one employee-day.
type ShiftStatus string

const (
	ShiftWorking ShiftStatus = "WORKING"
	ShiftWeekOff ShiftStatus = "WO"
	ShiftHoliday ShiftStatus = "HOL"
)

// RosterEntry is one employee-day of the published shift roster.
type RosterEntry struct {
	ID         string
	EmployeeID string
	EmpNo      string

	Date      time.Time
	ShiftID   string
	ShiftName string
	Status    ShiftStatus

	// PayableShift is the pay weight of the day (1 for a normal working day,
	// 0 for an unpaid off day; rosters may publish fractional weights).
	PayableShift float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
