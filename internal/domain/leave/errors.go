package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("Leave request not found")
	ErrLeaveSplitNotFound           = errors.New("Leave split not found")
	ErrMonthlyRecordNotFound        = errors.New("Monthly leave record not found")
	ErrLeaveTypeNotFound            = errors.New("Leave type not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("Leave request already processed")
	ErrLeaveRequestCancelled        = errors.New("Leave request is cancelled and immutable")
	ErrInsufficientBalance          = errors.New("Insufficient leave balance")
	ErrInvalidMonth                 = errors.New("Invalid month, expected YYYY-MM")
)
