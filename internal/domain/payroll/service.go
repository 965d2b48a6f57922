package payroll

import "context"

// RegisterService computes day-level pay-register data from the source
// collections. PopulatePayRegisterFromSources performs no writes.
type RegisterService interface {
	PopulatePayRegisterFromSources(ctx context.Context, employeeID, empNo string, year, month int) ([]DailyPayRecord, error)
	// ManualSyncPayRegister imports attendance for the month's payroll range,
	// recomputes the full day list and persists it. Manual edits are NOT
	// honored here: a manual full sync is an explicit operator request.
	ManualSyncPayRegister(ctx context.Context, employeeID, empNo string, year, month int) (PayRegister, error)
	GetRegister(ctx context.Context, employeeID, month string) (PayRegister, error)
}

// SyncService is the incremental resync guard. Each entry point reconciles
// every payroll month plausibly affected by the change event, skipping months
// that carry manual edits inside the changed span.
type SyncService interface {
	SyncPayRegisterFromLeave(ctx context.Context, ev ChangeEvent) SyncReport
	SyncPayRegisterFromOD(ctx context.Context, ev ChangeEvent) SyncReport
	SyncPayRegisterFromOT(ctx context.Context, ev ChangeEvent) SyncReport
	// ResyncMonth reconciles a single (employee, month), honoring manual edits
	// across the whole payroll range. Used by the periodic worker.
	ResyncMonth(ctx context.Context, employeeID, empNo string, year, month int) MonthSyncResult
}

// ResyncEnqueuer hands change events to the background-job transport. The
// approval workflow calls this after every status change.
type ResyncEnqueuer interface {
	EnqueueLeaveResync(ctx context.Context, ev ChangeEvent) error
	EnqueueODResync(ctx context.Context, ev ChangeEvent) error
	EnqueueOTResync(ctx context.Context, ev ChangeEvent) error
}
