package payroll

import "context"

// PayRegisterRepository - interface for the pay_registers table
type PayRegisterRepository interface {
	Create(ctx context.Context, register PayRegister) (PayRegister, error)
	GetByEmployeeMonth(ctx context.Context, employeeID, month string) (PayRegister, error)
	// ReplaceDays overwrites the day list and totals wholesale and stamps the
	// last-synced timestamp for source.
	ReplaceDays(ctx context.Context, id string, days DayRecords, totals RegisterTotals, source SyncSource) error
	// ListEmployeeIDsWithMonth returns the employees that have a register for month.
	ListEmployeeIDsWithMonth(ctx context.Context, month string) ([]string, error)
}
