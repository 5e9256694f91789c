package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"reportdesk.app/reportdesk/core/db"
	"reportdesk.app/reportdesk/internal/model"
)

type configStore struct {
	q db.Querier
}

func newConfigStore(q db.Querier) ConfigStore {
	return &configStore{q: q}
}

const configColumns = `id, channel_id, enabled, created_at, updated_at`

func (s *configStore) GetActive(ctx context.Context) (*model.ReportConfig, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+configColumns+` FROM report_config
		WHERE enabled = TRUE
		ORDER BY id
		LIMIT 1`)
	return scanConfig(row)
}

func (s *configStore) Upsert(ctx context.Context, cfg *model.ReportConfig) (*model.ReportConfig, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO report_config (id, channel_id, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id) DO UPDATE
		SET enabled = EXCLUDED.enabled, updated_at = now()
		RETURNING `+configColumns,
		cfg.ID, cfg.ChannelID, cfg.Enabled,
	)
	return scanConfig(row)
}

func scanConfig(row pgx.Row) (*model.ReportConfig, error) {
	var cfg model.ReportConfig
	if err := row.Scan(&cfg.ID, &cfg.ChannelID, &cfg.Enabled, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}
