package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("Attendance not found")
)
