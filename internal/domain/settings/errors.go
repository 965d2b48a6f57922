package settings

import "errors"

var (
	ErrSettingNotFound = errors.New("Setting not found")
)
