package leave

import (
	"math"
	"time"
)

// SplitInput is one proposed day-level (or half-day) entry of a split set.
type SplitInput struct {
	Date        string        `json:"date"` // "2006-01-02"
	LeaveType   string        `json:"leave_type"`
	LeaveNature LeaveNature   `json:"leave_nature,omitempty"`
	IsHalfDay   bool          `json:"is_half_day"`
	HalfDayType HalfDayType   `json:"half_day_type,omitempty"`
	Status      SplitDecision `json:"status"`
	Reason      string        `json:"reason,omitempty"`
}

// DayWeight is the day unit the input contributes: 0.5 for a half-day, else 1.
func (in SplitInput) DayWeight() float64 {
	if in.IsHalfDay {
		return 0.5
	}
	return 1
}

// SplitValidationResult is the structural outcome of validating a split set.
// Warnings never block; the set is valid iff Errors is empty.
type SplitValidationResult struct {
	IsValid           bool     `json:"is_valid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	TotalSplitDays    float64  `json:"total_split_days"`
	OriginalTotalDays float64  `json:"original_total_days"`
}

// BalanceCheckResult reports whether an employee can take the requested days.
type BalanceCheckResult struct {
	HasBalance bool    `json:"has_balance"`
	Message    string  `json:"message"`
	Balance    float64 `json:"balance"`
}

// Unlimited reports whether the balance is uncapped.
func (b BalanceCheckResult) Unlimited() bool {
	return math.IsInf(b.Balance, 1)
}

// SplitBucket keys the split-summary breakdown by (leave type, decision).
type SplitBucket struct {
	LeaveType string        `json:"leave_type"`
	Status    SplitDecision `json:"status"`
}

// SplitBucketDays is one breakdown row of a split summary.
type SplitBucketDays struct {
	SplitBucket
	Days float64 `json:"days"`
}

// SplitSummary is a read-only aggregate of the current split set of one leave.
type SplitSummary struct {
	LeaveRequestID string            `json:"leave_request_id"`
	TotalSplits    int               `json:"total_splits"`
	ApprovedDays   float64           `json:"approved_days"`
	RejectedDays   float64           `json:"rejected_days"`
	Breakdown      []SplitBucketDays `json:"breakdown"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// UpdateSplitRequest carries the mutable fields of one split.
type UpdateSplitRequest struct {
	SplitID     string         `json:"split_id"`
	LeaveType   *string        `json:"leave_type,omitempty"`
	LeaveNature *LeaveNature   `json:"leave_nature,omitempty"`
	Status      *SplitDecision `json:"status,omitempty"`
	Reason      *string        `json:"reason,omitempty"`
}

// ApplyLeaveRequest is the application DTO for a new leave request.
type ApplyLeaveRequest struct {
	EmployeeID  string      `json:"employee_id"`
	FromDate    string      `json:"from_date"`
	ToDate      string      `json:"to_date"`
	LeaveType   string      `json:"leave_type"`
	IsHalfDay   bool        `json:"is_half_day"`
	HalfDayType HalfDayType `json:"half_day_type,omitempty"`
	Reason      string      `json:"reason"`
}

// LeaveAction names the approval-workflow transition that triggered a monthly
// recompute. The recompute itself is unconditional and idempotent; the action
// only documents intent.
type LeaveAction string

const (
	ActionApproved  LeaveAction = "approved"
	ActionRejected  LeaveAction = "rejected"
	ActionCancelled LeaveAction = "cancelled"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}
