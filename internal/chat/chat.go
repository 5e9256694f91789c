// Package chat abstracts the chat platform the report desk talks to: posting
// and editing cards in the moderation channel and sending direct messages to
// reporters. The lifecycle service only depends on the Client interface.
package chat

import (
	"context"
	"errors"
	"time"

	"reportdesk.app/reportdesk/internal/model"
)

// ErrUnpostable is returned when the destination channel does not exist or
// the bot cannot post to it. Callers classify this as a delivery failure and
// do not retry.
var ErrUnpostable = errors.New("destination channel is not postable")

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Embed is a renderable card.
type Embed struct {
	Title      string
	Color      int
	Fields     []EmbedField
	FooterText string
	ImageURL   string
	Timestamp  time.Time
}

// Button is an interactive control attached to a message. The CustomID is the
// only state it carries; handlers re-derive everything else from the store.
type Button struct {
	Label    string
	CustomID string
	Disabled bool
}

// FileRef points at a file to forward along with a message. The client
// fetches the URL and uploads the content to the destination.
type FileRef struct {
	Name        string
	ContentType string
	URL         string
}

type Message struct {
	Content string
	Embed   *Embed
	Buttons []Button
	Files   []FileRef
}

// Posted describes the message created in the destination channel, including
// the stored copies of any forwarded files.
type Posted struct {
	ID          int64
	Attachments []model.Attachment
}

type Client interface {
	PostMessage(ctx context.Context, channelID int64, msg Message) (*Posted, error)
	EditMessage(ctx context.Context, channelID, messageID int64, msg Message) error
	SendDM(ctx context.Context, userID int64, content string) error
}
