package service

import (
	"log/slog"

	"reportdesk.app/reportdesk/internal/cache"
	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/queue"
	"reportdesk.app/reportdesk/internal/store"
)

type ServicesConfig struct {
	Stores     *store.Stores
	Chat       chat.Client
	Deliveries *cache.Deliveries
	Notify     queue.Producer
	Logger     *slog.Logger
}

type Services struct {
	reports ReportService
	configs ConfigService
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		reports: NewReportService(
			cfg.Stores.Reports(),
			cfg.Stores.Configs(),
			cfg.Chat,
			cfg.Deliveries,
			cfg.Notify,
			cfg.Logger,
		),
		configs: NewConfigService(cfg.Stores.Configs()),
	}
}

func (s *Services) Reports() ReportService {
	return s.reports
}

func (s *Services) Configs() ConfigService {
	return s.configs
}
