package leave

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// LeaveNature is the pay treatment of a leave day.
type LeaveNature string

const (
	NaturePaid       LeaveNature = "paid"
	NatureWithoutPay LeaveNature = "without_pay"
	NatureLOP        LeaveNature = "lop"
)

// IsUnpaid reports whether days of this nature draw down the financial-year
// unpaid-leave balance.
func (n LeaveNature) IsUnpaid() bool {
	return n == NatureWithoutPay || n == NatureLOP
}

// HalfDayType identifies which half of a calendar day a half-day entry claims.
type HalfDayType string

const (
	FirstHalf  HalfDayType = "first_half"
	SecondHalf HalfDayType = "second_half"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// SplitStatus marks a leave request whose days have been decomposed into
// LeaveSplit children. Empty means not split.
type SplitStatus string

const (
	SplitStatusNone     SplitStatus = ""
	SplitStatusApproved SplitStatus = "split_approved"
)

// SplitDecision is the per-day decision recorded on a LeaveSplit.
type SplitDecision string

const (
	SplitApproved SplitDecision = "approved"
	SplitRejected SplitDecision = "rejected"
)

// LeaveType entity (leave-settings store). Supplies the nature classification
// and the optional annual cap consumed by balance checks.
type LeaveType struct {
	ID   string
	Code string
	Name string

	IsActive bool
	IsPaid   bool

	// LeaveNature, when set, overrides the IsPaid-derived default.
	LeaveNature LeaveNature

	// MaxDaysPerYear caps approved split days per calendar year for paid
	// types; nil means unlimited.
	MaxDaysPerYear *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	EmpNo      string

	FromDate time.Time
	ToDate   time.Time

	// Half-day fields are meaningful only when the request spans exactly one day.
	IsHalfDay   bool
	HalfDayType HalfDayType

	LeaveType string
	// LeaveNature is an optional explicit override; when empty the nature is
	// derived from the leave-type configuration.
	LeaveNature LeaveNature

	NumberOfDays float64
	Reason       string

	Status          LeaveRequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time

	// Split state. A request with SplitStatus set has zero or more LeaveSplit
	// children whose combined approved days never exceed NumberOfDays.
	SplitStatus       SplitStatus
	SplitHistory      SplitHistory
	OriginalLeaveType string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpansSingleDay reports whether the request covers exactly one calendar day.
func (lr LeaveRequest) SpansSingleDay() bool {
	return lr.FromDate.Format("2006-01-02") == lr.ToDate.Format("2006-01-02")
}

// ContainsDate reports whether date falls inside [FromDate, ToDate].
func (lr LeaveRequest) ContainsDate(date time.Time) bool {
	d := date.Format("2006-01-02")
	return d >= lr.FromDate.Format("2006-01-02") && d <= lr.ToDate.Format("2006-01-02")
}

// SplitHistoryEntry is one audit record appended every time a request is
// (re-)split.
type SplitHistoryEntry struct {
	SplitBy      string       `json:"split_by"`
	SplitAt      time.Time    `json:"split_at"`
	PreviousDays float64      `json:"previous_days"`
	Splits       []SplitInput `json:"splits"`
}

// SplitHistory is the JSONB audit list on a leave request.
type SplitHistory []SplitHistoryEntry

// Value implements driver.Valuer for database storage
func (h SplitHistory) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for database retrieval
func (h *SplitHistory) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan SplitHistory: invalid type")
	}

	return json.Unmarshal(bytes, h)
}

// LeaveSplit is a single-day (or half-day) decomposition of a leave request,
// independently typed and natured.
type LeaveSplit struct {
	ID             string
	LeaveRequestID string
	EmployeeID     string
	EmpNo          string

	Date time.Time
	// Month is the "YYYY-MM" bucket of Date, denormalized for monthly lookups.
	Month string

	LeaveType string
	// LeaveNature is always resolved at creation time, never empty.
	LeaveNature LeaveNature

	IsHalfDay   bool
	HalfDayType HalfDayType

	// NumberOfDays is 0.5 for a half-day split, otherwise 1.
	NumberOfDays float64

	Status            SplitDecision
	OriginalLeaveType string
	Reason            string

	SplitBy string
	SplitAt time.Time
}

// MonthlyLeaveRecord is the derived per-(employee, month) leave aggregate.
// It is recomputed wholesale from LeaveRequest+LeaveSplit and never hand-edited.
type MonthlyLeaveRecord struct {
	ID         string
	EmployeeID string
	EmpNo      string

	// Month is "YYYY-MM".
	Month         string
	Year          int
	MonthNumber   int
	FinancialYear string

	LeaveIDs []string
	Summary  MonthlySummary

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveTypeBreakdown accumulates days for one leave type within a month.
type LeaveTypeBreakdown struct {
	LeaveType string   `json:"leave_type"`
	Days      float64  `json:"days"`
	LeaveIDs  []string `json:"leave_ids"`
}

// LeaveNatureBreakdown accumulates days for one nature within a month.
type LeaveNatureBreakdown struct {
	LeaveNature LeaveNature `json:"leave_nature"`
	Days        float64     `json:"days"`
	LeaveIDs    []string    `json:"leave_ids"`
}

// MonthlySummary holds the aggregate leave usage for one month in day units
// (0.5 granularity). Invariant: TotalLeaves equals the sum of the type
// breakdown days and the sum of the nature breakdown days.
type MonthlySummary struct {
	TotalLeaves      float64 `json:"total_leaves"`
	PaidLeaves       float64 `json:"paid_leaves"`
	WithoutPayLeaves float64 `json:"without_pay_leaves"`
	LOPLeaves        float64 `json:"lop_leaves"`

	LeaveTypesBreakdown   []LeaveTypeBreakdown   `json:"leave_types_breakdown"`
	LeaveNaturesBreakdown []LeaveNatureBreakdown `json:"leave_natures_breakdown"`
}

// Value implements driver.Valuer for database storage
func (s MonthlySummary) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *MonthlySummary) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan MonthlySummary: invalid type")
	}

	return json.Unmarshal(bytes, s)
}

// LeaveBalance is the financial-year unpaid-leave position for one employee.
type LeaveBalance struct {
	EmployeeID    string  `json:"employee_id"`
	FinancialYear string  `json:"financial_year"`
	Allotted      float64 `json:"allotted"`
	Used          float64 `json:"used"`
	Balance       float64 `json:"balance"`
}
