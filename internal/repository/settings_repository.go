package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/socialpulse/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `SELECT id, user_id, timezone, category, tone, created_at, updated_at FROM settings WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var s models.Settings
	err := row.Scan(&s.ID, &s.UserID, &s.Timezone, &s.Category, &s.Tone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

// Upsert writes the user's settings. Empty fields keep their stored value.
func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, timezone, category, tone)
		VALUES ($1, COALESCE(NULLIF($2, ''), 'UTC'), $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = COALESCE(NULLIF($2, ''), settings.timezone),
			category = COALESCE(NULLIF($3, ''), settings.category),
			tone = COALESCE(NULLIF($4, ''), settings.tone),
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, s.UserID, s.Timezone, s.Category, s.Tone)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
