package postgresql

import (
	"context"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/settings"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingRepositoryImpl struct {
	db *database.DB
}

func NewSettingRepository(db *database.DB) settings.SettingRepository {
	return &settingRepositoryImpl{db: db}
}

func (r *settingRepositoryImpl) Get(ctx context.Context, key string) (settings.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT key, value, updated_at
		FROM settings
		WHERE key = $1
	`

	var s settings.Setting
	err := q.QueryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return settings.Setting{}, settings.ErrSettingNotFound
		}
		return settings.Setting{}, err
	}
	return s, nil
}

func (r *settingRepositoryImpl) Set(ctx context.Context, key, value string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := q.Exec(ctx, query, key, value)
	return err
}
