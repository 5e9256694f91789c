package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Business context (report_id, channel_id, etc.) flows through
// context enrichment so individual log statements never repeat it.
type LogFields struct {
	ReportID      *int64  // report being submitted or replied to
	ChannelID     *int64  // moderation channel the card was routed to
	MessageID     *int64  // delivery handle of the posted card
	InteractionID *string // chat platform interaction ID
	QueueMsgID    *string // Redis stream message ID
	EventType     *string // interaction kind (e.g. "command", "modal_submit")
	Component     string  // component name, e.g. "reportdesk.worker.notify"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ReportID != nil {
		result.ReportID = next.ReportID
	}
	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.InteractionID != nil {
		result.InteractionID = next.InteractionID
	}
	if next.QueueMsgID != nil {
		result.QueueMsgID = next.QueueMsgID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ReportID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long report content.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
