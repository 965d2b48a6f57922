package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/settings"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveSplitNotFound):
		NotFound(w, "Leave split not found")
	case errors.Is(err, leave.ErrMonthlyRecordNotFound):
		NotFound(w, "Monthly leave record not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrLeaveRequestCancelled):
		Conflict(w, "Leave request is cancelled")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidMonth):
		BadRequest(w, "Invalid month, expected YYYY-MM", nil)

	// Duty domain errors
	case errors.Is(err, duty.ErrOfficialDutyNotFound):
		NotFound(w, "Official duty not found")
	case errors.Is(err, duty.ErrOvertimeNotFound):
		NotFound(w, "Overtime not found")
	case errors.Is(err, duty.ErrDutyAlreadyProcessed):
		Conflict(w, "Duty request already processed")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayRegisterNotFound):
		NotFound(w, "Pay register not found")
	case errors.Is(err, payroll.ErrInvalidCycleConfig):
		BadRequest(w, err.Error(), nil)

	// Other domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, settings.ErrSettingNotFound):
		NotFound(w, "Setting not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
