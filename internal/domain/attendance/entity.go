package attendance

import "time"

// AttendanceStatus is the machine-import status of one day's punches.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusHalfDay AttendanceStatus = "HALF_DAY"
	StatusPartial AttendanceStatus = "PARTIAL"
)

// ShowsPresence reports whether the status counts as actual presence for
// day-status resolution.
func (s AttendanceStatus) ShowsPresence() bool {
	return s == StatusPresent || s == StatusHalfDay || s == StatusPartial
}

// Attendance entity: one employee-day of imported punch data.
type Attendance struct {
	ID         string
	EmployeeID string
	EmpNo      string

	Date   time.Time
	Status AttendanceStatus

	FirstPunch *time.Time
	LastPunch  *time.Time
	WorkedMins int

	// ShiftID is the shift the punch import attributed this day to; used as a
	// fallback when the roster has no entry for the date.
	ShiftID   string
	ShiftName string

	CreatedAt time.Time
	UpdatedAt time.Time
}
