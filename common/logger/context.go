package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log line written with the context.
type LogFields struct {
	WorkspaceID   *int64  // owning workspace
	EventRecordID *int64  // persisted event row
	EventID       *string // stable UES event id
	Fingerprint   *string // dedup fingerprint
	MessageID     *string // Redis stream message ID
	EventType     *string // "issue" or "comment"
	Component     string  // e.g. "relay.webhook.jira"
}

// WithLogFields enriches context with structured log fields. Later calls
// win for every field they set.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.WorkspaceID != nil {
		result.WorkspaceID = next.WorkspaceID
	}
	if next.EventRecordID != nil {
		result.EventRecordID = next.EventRecordID
	}
	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.Fingerprint != nil {
		result.Fingerprint = next.Fingerprint
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

func (f LogFields) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 7)
	if f.WorkspaceID != nil {
		attrs = append(attrs, slog.Int64("workspace_id", *f.WorkspaceID))
	}
	if f.EventRecordID != nil {
		attrs = append(attrs, slog.Int64("event_record_id", *f.EventRecordID))
	}
	if f.EventID != nil {
		attrs = append(attrs, slog.String("event_id", *f.EventID))
	}
	if f.Fingerprint != nil {
		attrs = append(attrs, slog.String("dedup_fingerprint", *f.Fingerprint))
	}
	if f.MessageID != nil {
		attrs = append(attrs, slog.String("message_id", *f.MessageID))
	}
	if f.EventType != nil {
		attrs = append(attrs, slog.String("event_type", *f.EventType))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate cuts s to maxLen bytes and appends "..." when it did.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
