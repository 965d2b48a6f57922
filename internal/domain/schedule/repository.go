package schedule

import (
	"context"
	"time"
)

// RosterRepository - interface for the roster_entries table
type RosterRepository interface {
	FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]RosterEntry, error)
}
