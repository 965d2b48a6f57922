package settings

import "time"

// Well-known setting keys.
const (
	KeyPayrollCycleStartDay = "payroll_cycle_start_day"
	KeyPayrollCycleEndDay   = "payroll_cycle_end_day"
)

// Setting is one key/value pair from the application settings store.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
