package duty

import (
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
)

type DutyStatus string

const (
	DutyStatusWaitingApproval DutyStatus = "waiting_approval"
	DutyStatusApproved        DutyStatus = "approved"
	DutyStatusRejected        DutyStatus = "rejected"
	DutyStatusCancelled       DutyStatus = "cancelled"
)

// OfficialDuty (OD) entity: time worked away from the workplace on approved
// official business.
type OfficialDuty struct {
	ID         string
	EmployeeID string
	EmpNo      string

	FromDate time.Time
	ToDate   time.Time

	IsHalfDay   bool
	HalfDayType leave.HalfDayType

	Purpose string
	Status  DutyStatus

	ApprovedBy *string
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overtime (OT) entity: extra hours on a single date. OT never changes leave
// or attendance status; it only contributes hours to the pay register.
type Overtime struct {
	ID         string
	EmployeeID string
	EmpNo      string

	Date  time.Time
	Hours float64

	Status DutyStatus

	ApprovedBy *string
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
