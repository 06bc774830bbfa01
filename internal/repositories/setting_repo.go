package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mosswell/inkwell/internal/database"
	"github.com/mosswell/inkwell/internal/models"
)

type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(db *database.DB) *SettingRepository {
	return &SettingRepository{pool: db.Pool}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	err := r.pool.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

func (r *SettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make([]*models.Setting, 0)
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return settings, nil
}

// Upsert creates or replaces a setting value.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	setting.UpdatedAt = time.Now()

	var s models.Setting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = $2, description = COALESCE($3, settings.description), updated_at = $4
		RETURNING key, value, description, updated_at
	`, setting.Key, setting.Value, setting.Description, setting.UpdatedAt,
	).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}
