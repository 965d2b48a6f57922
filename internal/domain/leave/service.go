package leave

import (
	"context"
	"time"
)

// NatureResolver maps a leave-type code to its pay nature. Lookup failures are
// swallowed; callers always get a usable nature back.
type NatureResolver interface {
	// Resolve returns the configured nature for code, defaulting to paid.
	Resolve(ctx context.Context, code string) LeaveNature
	// ResolveFor honors an explicit nature when present, otherwise resolves code.
	ResolveFor(ctx context.Context, code string, explicit LeaveNature) LeaveNature
}

// SplitService decomposes leave requests into day-level splits.
type SplitService interface {
	ValidateSplits(ctx context.Context, leaveRequestID string, inputs []SplitInput) (SplitValidationResult, error)
	CheckLeaveBalance(ctx context.Context, employeeID, leaveType string, days float64) (BalanceCheckResult, error)
	CreateSplits(ctx context.Context, leaveRequestID string, inputs []SplitInput, actor string) (SplitValidationResult, error)
	UpdateSplit(ctx context.Context, req UpdateSplitRequest) (LeaveSplit, error)
	DeleteSplit(ctx context.Context, splitID string) error
	GetSplitSummary(ctx context.Context, leaveRequestID string) (SplitSummary, error)
}

// MonthlyService owns the derived per-month leave aggregates and the
// financial-year unpaid-leave balance.
type MonthlyService interface {
	GetOrCreateMonthlyRecord(ctx context.Context, employeeID, empNo string, date time.Time) (MonthlyLeaveRecord, error)
	RecalculateMonthlyRecord(ctx context.Context, employeeID, month string) (MonthlyLeaveRecord, error)
	CalculateLeaveBalance(ctx context.Context, employeeID, financialYear string) (LeaveBalance, error)
	GetCurrentLeaveBalance(ctx context.Context, employeeID string) (LeaveBalance, error)
	UpdateMonthlyRecordOnLeaveAction(ctx context.Context, request LeaveRequest, action LeaveAction) error
}

// RequestService is the approval-workflow surface for leave requests.
type RequestService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequest, error)
	Approve(ctx context.Context, requestID, approverID string) (LeaveRequest, error)
	Reject(ctx context.Context, requestID, reason, approverID string) (LeaveRequest, error)
	Cancel(ctx context.Context, requestID, actor string) (LeaveRequest, error)
	Get(ctx context.Context, requestID string) (LeaveRequest, error)
}
