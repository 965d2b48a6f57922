package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// DayStatus is the resolved payroll status of a half day.
type DayStatus string

const (
	StatusAbsent  DayStatus = "absent"
	StatusPresent DayStatus = "present"
	StatusLeave   DayStatus = "leave"
	StatusOD      DayStatus = "od"
	StatusWeekOff DayStatus = "week_off"
	StatusHoliday DayStatus = "holiday"
)

// Defaultish reports whether the status is still a roster default that
// presence or OD may upgrade. A half resolved to leave is never overwritten.
func (s DayStatus) Defaultish() bool {
	switch s {
	case StatusAbsent, StatusWeekOff, StatusHoliday:
		return true
	case StatusPresent, StatusLeave, StatusOD:
		return false
	}
	return false
}

// HalfDayStatus is the resolved state of one half of a calendar day.
// LeaveType carries the pay nature of the leave occupying the half ("paid",
// "lop", ...) when Status is leave, empty otherwise.
type HalfDayStatus struct {
	Status    DayStatus `json:"status"`
	LeaveType string    `json:"leave_type,omitempty"`
	IsOD      bool      `json:"is_od,omitempty"`
}

// DailyPayRecord is the authoritative per-day resolution handed to payroll.
// The combined Status/LeaveType/IsOD are set only when both halves agree;
// otherwise callers must read the per-half breakdown.
type DailyPayRecord struct {
	Date string `json:"date"` // "2006-01-02"

	FirstHalf  HalfDayStatus `json:"first_half"`
	SecondHalf HalfDayStatus `json:"second_half"`

	Status    *DayStatus `json:"status,omitempty"`
	LeaveType *string    `json:"leave_type,omitempty"`
	IsOD      *bool      `json:"is_od,omitempty"`

	IsSplit bool `json:"is_split"`

	ShiftID      string  `json:"shift_id,omitempty"`
	ShiftName    string  `json:"shift_name,omitempty"`
	PayableShift float64 `json:"payable_shift"`

	OTHours float64 `json:"ot_hours,omitempty"`

	AttendanceID string `json:"attendance_id,omitempty"`
	LeaveID      string `json:"leave_id,omitempty"`
	ODID         string `json:"od_id,omitempty"`
	OTID         string `json:"ot_id,omitempty"`
}

// DayRecords is the JSONB day list of a pay register.
type DayRecords []DailyPayRecord

// Value implements driver.Valuer for database storage
func (d DayRecords) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for database retrieval
func (d *DayRecords) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan DayRecords: invalid type")
	}

	return json.Unmarshal(bytes, d)
}

// RegisterTotals are month aggregates over the day records, counted in day
// units (each half contributes 0.5).
type RegisterTotals struct {
	CycleDays    float64 `json:"cycle_days"`
	PresentDays  float64 `json:"present_days"`
	LeaveDays    float64 `json:"leave_days"`
	ODDays       float64 `json:"od_days"`
	AbsentDays   float64 `json:"absent_days"`
	WeekOffDays  float64 `json:"week_off_days"`
	HolidayDays  float64 `json:"holiday_days"`
	PayableShift float64 `json:"payable_shift"`
	OTHours      float64 `json:"ot_hours"`
}

// Value implements driver.Valuer for database storage
func (t RegisterTotals) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for database retrieval
func (t *RegisterTotals) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan RegisterTotals: invalid type")
	}

	return json.Unmarshal(bytes, t)
}

// ManualEdit is one hand-correction of a day record, owned by the payroll
// summary UI. The sync guard only ever asks "was this date edited".
type ManualEdit struct {
	Date     string    `json:"date"` // "2006-01-02"
	EditedBy string    `json:"edited_by"`
	EditedAt time.Time `json:"edited_at"`
	Field    string    `json:"field,omitempty"`
	Note     string    `json:"note,omitempty"`
}

// EditHistory is the JSONB manual-edit list on a pay register.
type EditHistory []ManualEdit

// Value implements driver.Valuer for database storage
func (h EditHistory) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for database retrieval
func (h *EditHistory) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan EditHistory: invalid type")
	}

	return json.Unmarshal(bytes, h)
}

// PayRegister is the per-(employee, payroll month) summary document.
type PayRegister struct {
	ID         string
	EmployeeID string
	EmpNo      string

	// Month is "YYYY-MM" (the payroll month label; the actual date range may
	// cross the calendar-month boundary).
	Month string
	Year  int

	Days   DayRecords
	Totals RegisterTotals

	EditHistory EditHistory

	LastLeaveSyncAt *time.Time
	LastODSyncAt    *time.Time
	LastOTSyncAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManuallyEdited reports whether any manual edit targets date ("2006-01-02").
func (p PayRegister) IsManuallyEdited(date string) bool {
	for _, e := range p.EditHistory {
		if e.Date == date {
			return true
		}
	}
	return false
}

// DayFor returns the day record for date, if present.
func (p PayRegister) DayFor(date string) (DailyPayRecord, bool) {
	for _, d := range p.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DailyPayRecord{}, false
}
