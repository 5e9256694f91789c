// Package worker delivers best-effort direct notifications to reporters. It
// consumes notify tasks from the Redis stream, re-fetches the report, and
// sends the DM. Delivery failures never propagate anywhere: after the retry
// budget the task lands in the DLQ for observability and is dropped.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reportdesk.app/reportdesk/common/logger"
	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/mapper"
	"reportdesk.app/reportdesk/internal/queue"
	"reportdesk.app/reportdesk/internal/store"
)

// Consumer is the queue surface the worker needs; satisfied by
// queue.RedisConsumer.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
	MaxAttempts() int
}

type Worker struct {
	consumer Consumer
	reports  store.ReportStore
	chat     chat.Client

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, reports store.ReportStore, chatClient chat.Client) *Worker {
	return &Worker{
		consumer:  consumer,
		reports:   reports,
		chat:      chatClient,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "reportdesk.worker.notify"})
	slog.InfoContext(ctx, "notification worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "notification worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading notify tasks: %w", err)
	}

	for _, msg := range messages {
		w.processOne(ctx, msg)
	}
	return nil
}

func (w *Worker) processOne(ctx context.Context, msg queue.Message) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ReportID:   logger.Ptr(msg.ReportID),
		QueueMsgID: logger.Ptr(msg.ID),
	})

	err := w.deliver(ctx, msg)
	if err == nil {
		if ackErr := w.consumer.Ack(ctx, msg); ackErr != nil {
			slog.ErrorContext(ctx, "failed to ack notify task", "error", ackErr)
		}
		return
	}

	// A missing report is terminal: the task references state that no longer
	// exists, retrying cannot help.
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "dropping notify task for missing report")
		if ackErr := w.consumer.Ack(ctx, msg); ackErr != nil {
			slog.ErrorContext(ctx, "failed to ack notify task", "error", ackErr)
		}
		return
	}

	if msg.Attempt >= w.consumer.MaxAttempts() {
		slog.WarnContext(ctx, "direct notification abandoned", "error", err, "attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to dead-letter notify task", "error", dlqErr)
		}
		return
	}

	slog.InfoContext(ctx, "direct notification failed, retrying", "error", err, "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue notify task", "error", requeueErr)
	}
}

func (w *Worker) deliver(ctx context.Context, msg queue.Message) error {
	report, err := w.reports.GetByID(ctx, msg.ReportID)
	if err != nil {
		return err
	}

	var content string
	switch msg.Kind {
	case queue.TaskKindAck:
		content = mapper.AckDM(report)
	case queue.TaskKindReply:
		content = mapper.ReplyDM(report)
	default:
		return fmt.Errorf("unknown task kind %q", msg.Kind)
	}

	if err := w.chat.SendDM(ctx, msg.UserID, content); err != nil {
		return fmt.Errorf("sending dm: %w", err)
	}

	slog.InfoContext(ctx, "direct notification delivered", "kind", msg.Kind, "user_id", msg.UserID)
	return nil
}
