package employee

import "time"

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// Employee entity. The engine only needs identity and the annual unpaid-leave
// entitlement; everything else about an employee is owned elsewhere.
type Employee struct {
	ID       string
	EmpNo    string
	FullName string

	// AllottedLeaves is the annual entitlement of unpaid/LOP days used for
	// financial-year balance accounting.
	AllottedLeaves float64

	EmploymentStatus EmploymentStatus
	HireDate         time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
