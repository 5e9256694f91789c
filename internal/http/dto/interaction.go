// Package dto defines the wire types for the interaction webhook and the
// admin API. The interaction types are the subset of the chat platform's
// payload the report desk actually reads.
package dto

import "strconv"

type InteractionType int

const (
	InteractionTypePing             InteractionType = 1
	InteractionTypeCommand          InteractionType = 2
	InteractionTypeMessageComponent InteractionType = 3
	InteractionTypeModalSubmit      InteractionType = 5
)

type Interaction struct {
	ID        string           `json:"id"`
	Type      InteractionType  `json:"type"`
	Data      *InteractionData `json:"data,omitempty"`
	Member    *Member          `json:"member,omitempty"`
	User      *User            `json:"user,omitempty"`
	ChannelID string           `json:"channel_id,omitempty"`
}

type InteractionData struct {
	Name       string          `json:"name,omitempty"`      // command name
	CustomID   string          `json:"custom_id,omitempty"` // component / modal identity
	Options    []CommandOption `json:"options,omitempty"`
	Resolved   *Resolved       `json:"resolved,omitempty"`
	Components []ComponentRow  `json:"components,omitempty"` // modal submissions
}

// CommandOption values arrive as strings for every option type the report
// command uses (choice, string, attachment reference).
type CommandOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Resolved struct {
	Attachments map[string]ResolvedAttachment `json:"attachments,omitempty"`
}

type ResolvedAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

type ComponentRow struct {
	Type       int              `json:"type"`
	Components []ModalComponent `json:"components"`
}

type ModalComponent struct {
	Type     int    `json:"type"`
	CustomID string `json:"custom_id"`
	Value    string `json:"value"`
}

type Member struct {
	User        *User  `json:"user,omitempty"`
	Permissions string `json:"permissions,omitempty"` // decimal bitfield
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

const permissionAdministrator = 1 << 3

// IsAdministrator reports whether the member holds the administrator
// permission in the moderation surface.
func (m *Member) IsAdministrator() bool {
	if m == nil {
		return false
	}
	bits, err := strconv.ParseUint(m.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return bits&permissionAdministrator != 0
}

// Actor returns the user behind an interaction: guild interactions carry it
// on the member, DM interactions at the top level.
func (i *Interaction) Actor() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// Option returns the named command option value.
func (d *InteractionData) Option(name string) (string, bool) {
	for _, opt := range d.Options {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return "", false
}

// TextValue returns the value of the named text input in a modal submission.
func (d *InteractionData) TextValue(customID string) (string, bool) {
	for _, row := range d.Components {
		for _, component := range row.Components {
			if component.CustomID == customID {
				return component.Value, true
			}
		}
	}
	return "", false
}

// --- Responses --------------------------------------------------------------

type ResponseType int

const (
	ResponseTypePong    ResponseType = 1
	ResponseTypeMessage ResponseType = 4
	ResponseTypeModal   ResponseType = 9
)

// FlagEphemeral makes a response message visible only to the interacting
// user.
const FlagEphemeral = 1 << 6

type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content    string               `json:"content,omitempty"`
	Flags      int                  `json:"flags,omitempty"`
	CustomID   string               `json:"custom_id,omitempty"`
	Title      string               `json:"title,omitempty"`
	Components []ResponseSurfaceRow `json:"components,omitempty"`
}

type ResponseSurfaceRow struct {
	Type       int             `json:"type"` // 1 = action row
	Components []ResponseInput `json:"components"`
}

type ResponseInput struct {
	Type        int    `json:"type"`  // 4 = text input
	Style       int    `json:"style"` // 2 = paragraph
	CustomID    string `json:"custom_id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
	MaxLength   int    `json:"max_length,omitempty"`
}

// Ephemeral builds an ephemeral message response: the single terminal
// message every interaction ends with.
func Ephemeral(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseTypeMessage,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral},
	}
}
