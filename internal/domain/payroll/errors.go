package payroll

import "errors"

var (
	ErrPayRegisterNotFound = errors.New("Pay register not found")
	ErrInvalidCycleConfig  = errors.New("Invalid payroll cycle configuration")
)
