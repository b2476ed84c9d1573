package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// SettingLeadScoringEnabled toggles both engine runs at runtime.
const SettingLeadScoringEnabled = "lead_scoring_enabled"

// GetEngineSetting returns the stored value for key, or ErrNotFound.
func (r *Repository) GetEngineSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM engine_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *Repository) SetEngineSetting(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO engine_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}
