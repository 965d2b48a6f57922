package attendance

import (
	"context"
	"time"
)

// AttendanceRepository - interface for the attendances table
type AttendanceRepository interface {
	GetByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	Upsert(ctx context.Context, att Attendance) (Attendance, error)
}

// Importer pulls raw punches from the attendance source into the attendances
// table for a date range. The import itself lives outside this engine; manual
// full resync calls it before recomputing.
type Importer interface {
	ImportRange(ctx context.Context, employeeID string, from, to time.Time) error
}
