package employee

import "context"

// EmployeeRepository - interface for the employees table
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmpNo(ctx context.Context, empNo string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}
