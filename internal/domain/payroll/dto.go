package payroll

import "time"

// SyncSource identifies which record kind triggered a resync.
type SyncSource string

const (
	SourceLeaves SyncSource = "leaves"
	SourceODs    SyncSource = "ods"
	SourceOT     SyncSource = "ot"
	// SourceManual marks a full operator-requested or periodic resync; it
	// refreshes the last-synced timestamp of every source kind.
	SourceManual SyncSource = "manual"
)

// ChangeEvent describes an approved/rejected/cancelled leave, OD or OT record
// whose effect on pay registers must be reconciled. OT events carry a single
// date in both From and To.
type ChangeEvent struct {
	EmployeeID string    `json:"employee_id"`
	EmpNo      string    `json:"emp_no"`
	FromDate   time.Time `json:"from_date"`
	ToDate     time.Time `json:"to_date"`
	// RecordID is the leave/OD/OT id, for the OT patch path and logging.
	RecordID string `json:"record_id,omitempty"`
}

// SyncOutcome classifies what happened to one candidate month during a resync.
type SyncOutcome string

const (
	SyncDone             SyncOutcome = "synced"
	SyncSkippedNoRecord  SyncOutcome = "skipped_no_register"
	SyncSkippedManual    SyncOutcome = "skipped_manual_edit"
	SyncSkippedOutOfSpan SyncOutcome = "skipped_out_of_range"
	SyncFailed           SyncOutcome = "failed"
)

// MonthSyncResult is the typed outcome of one (employee, month) unit of work.
type MonthSyncResult struct {
	Month   string      `json:"month"` // "YYYY-MM"
	Outcome SyncOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
	Err     error       `json:"-"`
}

// SyncReport collects per-month results for one change event. A failed month
// never aborts its siblings.
type SyncReport struct {
	EmployeeID string            `json:"employee_id"`
	Source     SyncSource        `json:"source"`
	Results    []MonthSyncResult `json:"results"`
}

// Failed returns the subset of results that errored.
func (r SyncReport) Failed() []MonthSyncResult {
	var failed []MonthSyncResult
	for _, res := range r.Results {
		if res.Outcome == SyncFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
