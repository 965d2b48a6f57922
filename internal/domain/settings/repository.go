package settings

import "context"

// SettingRepository - interface for the settings table
type SettingRepository interface {
	Get(ctx context.Context, key string) (Setting, error)
	Set(ctx context.Context, key, value string) error
}
