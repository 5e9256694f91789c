package service

import (
	"context"
	"errors"
	"fmt"

	"reportdesk.app/reportdesk/common/id"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/store"
)

// ConfigService manages the routing target for report cards.
type ConfigService interface {
	// GetActive returns the configuration used for routing, or
	// ErrConfigMissing when none is enabled.
	GetActive(ctx context.Context) (*model.ReportConfig, error)

	// Set points the report desk at a moderation channel, creating or
	// updating the configuration for that channel.
	Set(ctx context.Context, channelID int64, enabled bool) (*model.ReportConfig, error)
}

type configService struct {
	configs store.ConfigStore
}

func NewConfigService(configs store.ConfigStore) ConfigService {
	return &configService{configs: configs}
}

func (s *configService) GetActive(ctx context.Context) (*model.ReportConfig, error) {
	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("fetching active config: %w", err)
	}
	return cfg, nil
}

func (s *configService) Set(ctx context.Context, channelID int64, enabled bool) (*model.ReportConfig, error) {
	if channelID == 0 {
		return nil, fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}

	cfg, err := s.configs.Upsert(ctx, &model.ReportConfig{
		ID:        id.New(),
		ChannelID: channelID,
		Enabled:   enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting config: %w", err)
	}
	return cfg, nil
}
