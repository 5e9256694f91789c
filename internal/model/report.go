package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed report classification chosen by the submitter.
type Category string

const (
	CategoryViolation  Category = "violation"
	CategoryBug        Category = "bug"
	CategorySuggestion Category = "suggestion"
	CategoryOther      Category = "other"
)

// ParseCategory validates a raw category value from an interaction payload.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryViolation:
		return CategoryViolation, nil
	case CategoryBug:
		return CategoryBug, nil
	case CategorySuggestion:
		return CategorySuggestion, nil
	case CategoryOther:
		return CategoryOther, nil
	}
	return "", fmt.Errorf("unknown report category: %q", raw)
}

// Label returns the human-facing name shown on cards.
func (c Category) Label() string {
	switch c {
	case CategoryViolation:
		return "Report Violation"
	case CategoryBug:
		return "Report Bug"
	case CategorySuggestion:
		return "Provide Suggestion"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

type Status string

const (
	StatusPending Status = "Pending"
	StatusReplied Status = "Replied"
)

// Attachment describes a file the reporter attached to a submission.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	URL         string `json:"url"`
}

// IsImage reports whether the attachment can be rendered inline on a card.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// Report is a persisted user report and its lifecycle fields.
//
// Submission fields (ReporterID through Attachments) are immutable after
// creation, except that Attachments may be overwritten once with the
// destination-confirmed copies after dispatch. Reply fields are set together
// in a single transition and never individually.
type Report struct {
	ID           int64        `json:"id"`
	ReporterID   int64        `json:"reporter_id"`
	ReporterName string       `json:"reporter_name"` // snapshot at submission time
	Category     Category     `json:"category"`
	Content      string       `json:"content"`
	Attachments  []Attachment `json:"attachments,omitempty"`

	// MessageID is the delivery handle: the ID of the card posted to the
	// moderation channel. Nil until dispatch succeeds, set at most once.
	MessageID *int64 `json:"message_id,omitempty"`

	Replied      bool       `json:"replied"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
	RepliedBy    *string    `json:"replied_by,omitempty"`
	ReplyContent *string    `json:"reply_content,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Status is derived from the replied flag and never stored.
func (r *Report) Status() Status {
	if r.Replied {
		return StatusReplied
	}
	return StatusPending
}
