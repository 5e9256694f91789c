package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"reportdesk.app/reportdesk/common/id"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/service"
	"reportdesk.app/reportdesk/internal/store"
)

var _ = Describe("ConfigService", func() {
	var (
		svc     service.ConfigService
		configs *mockConfigStore
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		configs = &mockConfigStore{}
		Expect(id.Init(1)).To(Succeed())
		svc = service.NewConfigService(configs)
	})

	Describe("GetActive", func() {
		It("returns the enabled configuration", func() {
			configs.getActiveFn = func(_ context.Context) (*model.ReportConfig, error) {
				return &model.ReportConfig{ID: 7, ChannelID: 555, Enabled: true}, nil
			}

			cfg, err := svc.GetActive(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ChannelID).To(Equal(int64(555)))
		})

		It("maps a store miss to ErrConfigMissing", func() {
			configs.getActiveFn = func(_ context.Context) (*model.ReportConfig, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.GetActive(ctx)
			Expect(err).To(MatchError(service.ErrConfigMissing))
		})
	})

	Describe("Set", func() {
		It("rejects a zero channel ID", func() {
			_, err := svc.Set(ctx, 0, true)
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})

		It("upserts with a generated ID", func() {
			var captured *model.ReportConfig
			configs.upsertFn = func(_ context.Context, cfg *model.ReportConfig) (*model.ReportConfig, error) {
				captured = cfg
				return cfg, nil
			}

			cfg, err := svc.Set(ctx, 555, true)

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ChannelID).To(Equal(int64(555)))
			Expect(cfg.Enabled).To(BeTrue())
			Expect(captured.ID).NotTo(BeZero())
		})

		It("propagates store failures", func() {
			configs.upsertFn = func(_ context.Context, _ *model.ReportConfig) (*model.ReportConfig, error) {
				return nil, errors.New("constraint violation")
			}

			_, err := svc.Set(ctx, 555, false)
			Expect(err).To(HaveOccurred())
		})
	})
})
