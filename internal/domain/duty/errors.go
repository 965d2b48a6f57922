package duty

import "errors"

var (
	ErrOfficialDutyNotFound = errors.New("Official duty not found")
	ErrOvertimeNotFound     = errors.New("Overtime not found")
	ErrDutyAlreadyProcessed = errors.New("Duty request already processed")
)
