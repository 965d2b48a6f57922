package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for the leave_types table
type LeaveTypeRepository interface {
	GetActiveByCode(ctx context.Context, code string) (LeaveType, error)
	ListActive(ctx context.Context) ([]LeaveType, error)
}

// LeaveRequestRepository - interface for the leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) error
	UpdateStatus(ctx context.Context, id string, status LeaveRequestStatus, actor string, reason *string) error
	// FindApprovedUnsplitOverlapping returns approved, non-cancelled requests
	// without split children whose [FromDate, ToDate] overlaps [from, to].
	FindApprovedUnsplitOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
	FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}

// LeaveSplitRepository - interface for the leave_splits table
type LeaveSplitRepository interface {
	CreateBatch(ctx context.Context, splits []LeaveSplit) error
	GetByID(ctx context.Context, id string) (LeaveSplit, error)
	GetByLeaveRequestID(ctx context.Context, leaveRequestID string) ([]LeaveSplit, error)
	Update(ctx context.Context, split LeaveSplit) error
	Delete(ctx context.Context, id string) error
	DeleteByLeaveRequestID(ctx context.Context, leaveRequestID string) error
	// FindApprovedByEmployeeMonth returns approved splits whose Month equals month.
	FindApprovedByEmployeeMonth(ctx context.Context, employeeID, month string) ([]LeaveSplit, error)
	FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveSplit, error)
	// SumApprovedDaysByTypeYear totals approved split days of one leave type
	// within one calendar year, for annual-cap checks.
	SumApprovedDaysByTypeYear(ctx context.Context, employeeID, leaveType string, year int) (float64, error)
}

// MonthlyRecordRepository - interface for the monthly_leave_records table
type MonthlyRecordRepository interface {
	Create(ctx context.Context, record MonthlyLeaveRecord) (MonthlyLeaveRecord, error)
	GetByEmployeeMonth(ctx context.Context, employeeID, month string) (MonthlyLeaveRecord, error)
	// Replace overwrites LeaveIDs and Summary wholesale; recomputes are full
	// replacements, never incremental patches.
	Replace(ctx context.Context, id string, leaveIDs []string, summary MonthlySummary) error
	FindByEmployeeFinancialYear(ctx context.Context, employeeID, financialYear string) ([]MonthlyLeaveRecord, error)
}
