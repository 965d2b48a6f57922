package duty

import (
	"context"
	"time"
)

// OfficialDutyRepository - interface for the official_duties table
type OfficialDutyRepository interface {
	GetByID(ctx context.Context, id string) (OfficialDuty, error)
	UpdateStatus(ctx context.Context, id string, status DutyStatus, actor string) error
	FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]OfficialDuty, error)
}

// OvertimeRepository - interface for the overtimes table
type OvertimeRepository interface {
	GetByID(ctx context.Context, id string) (Overtime, error)
	UpdateStatus(ctx context.Context, id string, status DutyStatus, actor string) error
	FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Overtime, error)
}
