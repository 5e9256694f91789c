package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"reportdesk.app/reportdesk/common/id"
	"reportdesk.app/reportdesk/common/logger"
	"reportdesk.app/reportdesk/internal/cache"
	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/mapper"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/queue"
	"reportdesk.app/reportdesk/internal/store"
)

const (
	// MaxContentLen bounds report content to fit a single card field.
	MaxContentLen = 4000
	// MaxReplyLen bounds the reply form's text field.
	MaxReplyLen = 1000
)

var (
	// ErrConfigMissing means no enabled routing configuration exists. The
	// report record itself is never lost to this condition.
	ErrConfigMissing = errors.New("no enabled report configuration")

	// ErrReportNotFound is returned by Reply for an unknown report ID.
	ErrReportNotFound = errors.New("report not found")

	// ErrAlreadyReplied rejects a second reply to the same report.
	ErrAlreadyReplied = store.ErrAlreadyReplied

	// ErrInvalidInput covers category/content validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

type SubmitParams struct {
	ReporterID   int64
	ReporterName string
	Category     string
	Content      string
	Attachment   *model.Attachment
}

// SubmitResult reports the outcome of a submission. The Report is always set
// once the record is created, even when delivery to the moderation channel
// failed: persistence precedes dispatch and is never rolled back.
type SubmitResult struct {
	Report    *model.Report
	Delivered bool
	// DeliveryErr explains a failed dispatch (ErrConfigMissing or a chat
	// transport error). Nil when Delivered.
	DeliveryErr error
}

type ReplyParams struct {
	ReportID  int64
	AdminID   int64
	AdminName string
	Content   string
}

// ReplyResult reports the outcome of a reply. Report carries the post-
// transition record. The reply itself is durable before any notification is
// attempted.
type ReplyResult struct {
	Report *model.Report
	// CardUpdated is true when the original card was re-rendered to the
	// Replied state. A miss here is cosmetic, never a failure.
	CardUpdated bool
	Notified    bool
	// NotifyErr explains a failed reply-summary dispatch. Nil when Notified.
	NotifyErr error
}

// ReportService orchestrates the report lifecycle: submission (create,
// render, dispatch, persist the delivery handle) and reply (transition,
// re-render, notify).
type ReportService interface {
	Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error)
	Reply(ctx context.Context, params ReplyParams) (*ReplyResult, error)
	Get(ctx context.Context, reportID int64) (*model.Report, error)
	List(ctx context.Context, filter store.ReportFilter) ([]model.Report, error)
}

type reportService struct {
	reports    store.ReportStore
	configs    store.ConfigStore
	chat       chat.Client
	deliveries *cache.Deliveries
	notify     queue.Producer
	logger     *slog.Logger
}

func NewReportService(
	reports store.ReportStore,
	configs store.ConfigStore,
	chatClient chat.Client,
	deliveries *cache.Deliveries,
	notify queue.Producer,
	log *slog.Logger,
) ReportService {
	if log == nil {
		log = slog.Default()
	}
	return &reportService{
		reports:    reports,
		configs:    configs,
		chat:       chatClient,
		deliveries: deliveries,
		notify:     notify,
		logger:     log,
	}
}

func (s *reportService) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	category, err := model.ParseCategory(params.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateContent(params.Content, MaxContentLen); err != nil {
		return nil, err
	}

	report := &model.Report{
		ID:           id.New(),
		ReporterID:   params.ReporterID,
		ReporterName: params.ReporterName,
		Category:     category,
		Content:      params.Content,
	}
	if params.Attachment != nil {
		report.Attachments = []model.Attachment{*params.Attachment}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ReportID: logger.Ptr(report.ID)})

	// The record must exist before any network dispatch: a crash after this
	// point leaves a recoverable pending record, never a ghost card.
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WarnContext(ctx, "report created but undeliverable: no enabled configuration")
			return &SubmitResult{Report: report, DeliveryErr: ErrConfigMissing}, nil
		}
		return &SubmitResult{Report: report, DeliveryErr: err}, nil
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(cfg.ChannelID)})

	msg := mapper.ReportCard(report)
	for _, a := range report.Attachments {
		msg.Files = append(msg.Files, chat.FileRef{
			Name:        a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}

	posted, err := s.chat.PostMessage(ctx, cfg.ChannelID, msg)
	if err != nil {
		// No retry: the record stays pending and undelivered, which is an
		// accepted terminal state.
		s.logger.ErrorContext(ctx, "report card dispatch failed", "error", err)
		return &SubmitResult{Report: report, DeliveryErr: err}, nil
	}

	if err := s.reports.SetMessageID(ctx, report.ID, posted.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist delivery handle", "error", err, "posted_message_id", posted.ID)
	} else {
		report.MessageID = &posted.ID
	}
	s.deliveries.Put(report.ID, cache.Handle{ChannelID: cfg.ChannelID, MessageID: posted.ID})

	// The destination reflects back stored copies of forwarded files; prefer
	// those over the reporter's original URLs. Best effort.
	if len(report.Attachments) > 0 && len(posted.Attachments) > 0 {
		if err := s.reports.UpdateAttachments(ctx, report.ID, posted.Attachments); err != nil {
			s.logger.WarnContext(ctx, "failed to persist stored attachment copies", "error", err)
		} else {
			report.Attachments = posted.Attachments
		}
	}

	s.enqueueNotify(ctx, queue.TaskKindAck, report)

	return &SubmitResult{Report: report, Delivered: true}, nil
}

func (s *reportService) Reply(ctx context.Context, params ReplyParams) (*ReplyResult, error) {
	if err := validateContent(params.Content, MaxReplyLen); err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ReportID: logger.Ptr(params.ReportID)})

	// Always re-fetch from the store; the delivery cache is advisory and a
	// control can fire long after the record changed underneath it.
	if _, err := s.reports.GetByID(ctx, params.ReportID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("fetching report: %w", err)
	}

	report, err := s.reports.MarkReplied(ctx, params.ReportID, params.AdminName, params.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		// Includes ErrAlreadyReplied: the one-way transition already
		// happened and is never overwritten.
		return nil, err
	}

	result := &ReplyResult{Report: report}

	// Config is re-resolved: the routing target may have changed since the
	// report was submitted.
	cfg, cfgErr := s.configs.GetActive(ctx)

	result.CardUpdated = s.refreshCard(ctx, report, cfg)

	if cfgErr != nil {
		if errors.Is(cfgErr, store.ErrNotFound) {
			cfgErr = ErrConfigMissing
		}
		s.logger.WarnContext(ctx, "reply saved but notification skipped", "error", cfgErr)
		result.NotifyErr = cfgErr
		return result, nil
	}

	if _, err := s.chat.PostMessage(ctx, cfg.ChannelID, mapper.ReplySummaryCard(report)); err != nil {
		s.logger.ErrorContext(ctx, "reply summary dispatch failed", "error", err, "channel_id", cfg.ChannelID)
		result.NotifyErr = err
		return result, nil
	}
	result.Notified = true

	s.enqueueNotify(ctx, queue.TaskKindReply, report)

	return result, nil
}

func (s *reportService) Get(ctx context.Context, reportID int64) (*model.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, filter store.ReportFilter) ([]model.Report, error) {
	return s.reports.List(ctx, filter)
}

// refreshCard re-renders the original card to its Replied state: green,
// control disabled. The delivery cache locates the card in-session; after a
// restart it falls back to the persisted handle and the current channel.
// Every failure here is cosmetic and swallowed.
func (s *reportService) refreshCard(ctx context.Context, report *model.Report, cfg *model.ReportConfig) bool {
	handle, ok := s.deliveries.Get(report.ID)
	if !ok {
		if report.MessageID == nil || cfg == nil {
			s.logger.InfoContext(ctx, "original card unreachable, skipping refresh")
			return false
		}
		handle = cache.Handle{ChannelID: cfg.ChannelID, MessageID: *report.MessageID}
	}

	if err := s.chat.EditMessage(ctx, handle.ChannelID, handle.MessageID, mapper.ReportCard(report)); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh original card", "error", err, "card_message_id", handle.MessageID)
		return false
	}
	return true
}

// enqueueNotify hands a direct notification to the worker. Failures are
// logged and swallowed: DMs never change an operation's outcome.
func (s *reportService) enqueueNotify(ctx context.Context, kind queue.TaskKind, report *model.Report) {
	if s.notify == nil {
		return
	}
	err := s.notify.Enqueue(ctx, queue.NotifyTask{
		Kind:     kind,
		ReportID: report.ID,
		UserID:   report.ReporterID,
		Attempt:  1,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue direct notification", "error", err, "kind", kind)
	}
}

func validateContent(content string, maxLen int) error {
	if content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxLen {
		return fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, maxLen)
	}
	return nil
}
