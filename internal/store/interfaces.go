package store

import (
	"context"
	"errors"

	"reportdesk.app/reportdesk/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
// A lookup miss is a normal, expected result, not a failure.
var ErrNotFound = errors.New("not found")

// ErrAlreadyReplied is returned by MarkReplied when the report has already
// passed the Pending -> Replied transition. The transition is one-way and
// applied with a conditional update, so a second reply never overwrites.
var ErrAlreadyReplied = errors.New("report already replied")

// ReportFilter narrows List results. Nil fields are ignored.
type ReportFilter struct {
	Category   *model.Category
	Replied    *bool
	ReporterID *int64
	Limit      int32
	Offset     int32
}

// ReportStore defines the contract for report data access.
type ReportStore interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id int64) (*model.Report, error)

	// SetMessageID persists the delivery handle. It only writes when the
	// handle is still unset, so a stray re-dispatch cannot corrupt it.
	SetMessageID(ctx context.Context, id int64, messageID int64) error

	// UpdateAttachments overwrites attachment metadata with the
	// destination-confirmed copies after dispatch.
	UpdateAttachments(ctx context.Context, id int64, attachments []model.Attachment) error

	// MarkReplied applies the Pending -> Replied transition: all four reply
	// fields committed in one conditional update. Returns ErrAlreadyReplied
	// when the report has a reply, ErrNotFound when it does not exist.
	MarkReplied(ctx context.Context, id int64, repliedBy, replyContent string) (*model.Report, error)

	List(ctx context.Context, filter ReportFilter) ([]model.Report, error)
}

// ConfigStore defines the contract for routing configuration access.
type ConfigStore interface {
	// GetActive returns the first enabled configuration, or ErrNotFound.
	GetActive(ctx context.Context) (*model.ReportConfig, error)

	// Upsert creates or updates the configuration for a channel.
	Upsert(ctx context.Context, cfg *model.ReportConfig) (*model.ReportConfig, error)
}
