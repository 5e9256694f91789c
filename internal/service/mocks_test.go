package service_test

import (
	"context"

	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/queue"
	"reportdesk.app/reportdesk/internal/store"
)

type mockReportStore struct {
	createFn            func(ctx context.Context, report *model.Report) error
	getByIDFn           func(ctx context.Context, id int64) (*model.Report, error)
	setMessageIDFn      func(ctx context.Context, id int64, messageID int64) error
	updateAttachmentsFn func(ctx context.Context, id int64, attachments []model.Attachment) error
	markRepliedFn       func(ctx context.Context, id int64, repliedBy, replyContent string) (*model.Report, error)
	listFn              func(ctx context.Context, filter store.ReportFilter) ([]model.Report, error)

	createCalls       int
	setMessageIDCalls int
}

func (m *mockReportStore) Create(ctx context.Context, report *model.Report) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, report)
	}
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockReportStore) SetMessageID(ctx context.Context, id int64, messageID int64) error {
	m.setMessageIDCalls++
	if m.setMessageIDFn != nil {
		return m.setMessageIDFn(ctx, id, messageID)
	}
	return nil
}

func (m *mockReportStore) UpdateAttachments(ctx context.Context, id int64, attachments []model.Attachment) error {
	if m.updateAttachmentsFn != nil {
		return m.updateAttachmentsFn(ctx, id, attachments)
	}
	return nil
}

func (m *mockReportStore) MarkReplied(ctx context.Context, id int64, repliedBy, replyContent string) (*model.Report, error) {
	if m.markRepliedFn != nil {
		return m.markRepliedFn(ctx, id, repliedBy, replyContent)
	}
	return nil, store.ErrNotFound
}

func (m *mockReportStore) List(ctx context.Context, filter store.ReportFilter) ([]model.Report, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

type mockConfigStore struct {
	getActiveFn func(ctx context.Context) (*model.ReportConfig, error)
	upsertFn    func(ctx context.Context, cfg *model.ReportConfig) (*model.ReportConfig, error)
}

func (m *mockConfigStore) GetActive(ctx context.Context) (*model.ReportConfig, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx)
	}
	return nil, store.ErrNotFound
}

func (m *mockConfigStore) Upsert(ctx context.Context, cfg *model.ReportConfig) (*model.ReportConfig, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, cfg)
	}
	return cfg, nil
}

type mockChatClient struct {
	postMessageFn func(ctx context.Context, channelID int64, msg chat.Message) (*chat.Posted, error)
	editMessageFn func(ctx context.Context, channelID, messageID int64, msg chat.Message) error
	sendDMFn      func(ctx context.Context, userID int64, content string) error

	postCalls int
	editCalls int
}

func (m *mockChatClient) PostMessage(ctx context.Context, channelID int64, msg chat.Message) (*chat.Posted, error) {
	m.postCalls++
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, msg)
	}
	return &chat.Posted{ID: 1}, nil
}

func (m *mockChatClient) EditMessage(ctx context.Context, channelID, messageID int64, msg chat.Message) error {
	m.editCalls++
	if m.editMessageFn != nil {
		return m.editMessageFn(ctx, channelID, messageID, msg)
	}
	return nil
}

func (m *mockChatClient) SendDM(ctx context.Context, userID int64, content string) error {
	if m.sendDMFn != nil {
		return m.sendDMFn(ctx, userID, content)
	}
	return nil
}

type mockProducer struct {
	enqueueFn    func(ctx context.Context, task queue.NotifyTask) error
	enqueueCalls int
	tasks        []queue.NotifyTask
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.NotifyTask) error {
	m.enqueueCalls++
	m.tasks = append(m.tasks, task)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
