package queue

import (
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Message is a parsed stream entry.
type Message struct {
	ID            string
	EventRecordID int64
	EventID       string
	Fingerprint   string
	WorkspaceID   *int64
	EventType     string
	Attempt       int
	TraceID       string
	Raw           redis.XMessage
}

func ParseMessage(msg redis.XMessage) (Message, error) {
	eventRecordID, err := parseInt64(msg.Values, "event_record_id")
	if err != nil {
		return Message{}, err
	}
	workspaceID, err := parseOptionalInt64(msg.Values, "workspace_id")
	if err != nil {
		return Message{}, err
	}
	eventType, err := parseString(msg.Values, "event_type")
	if err != nil {
		return Message{}, err
	}
	attempt, err := parseOptionalInt(msg.Values, "attempt")
	if err != nil {
		return Message{}, err
	}
	if attempt == 0 {
		attempt = 1
	}

	return Message{
		ID:            msg.ID,
		EventRecordID: eventRecordID,
		EventID:       optionalString(msg.Values, "event_id"),
		Fingerprint:   optionalString(msg.Values, "dedup_fingerprint"),
		WorkspaceID:   workspaceID,
		EventType:     eventType,
		Attempt:       attempt,
		TraceID:       optionalString(msg.Values, "trace_id"),
		Raw:           msg,
	}, nil
}

func messageValues(msg Message, attempt int) map[string]any {
	values := map[string]any{
		"event_record_id": msg.EventRecordID,
		"event_type":      msg.EventType,
		"attempt":         attempt,
	}
	if msg.EventID != "" {
		values["event_id"] = msg.EventID
	}
	if msg.Fingerprint != "" {
		values["dedup_fingerprint"] = msg.Fingerprint
	}
	if msg.WorkspaceID != nil {
		values["workspace_id"] = *msg.WorkspaceID
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	return values
}

func parseInt64(values map[string]any, key string) (int64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, err := strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func parseString(values map[string]any, key string) (string, error) {
	raw, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	return fmt.Sprint(raw), nil
}

func parseOptionalInt64(values map[string]any, key string) (*int64, error) {
	raw, ok := values[key]
	if !ok {
		return nil, nil
	}
	num, err := strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return &num, nil
}

func parseOptionalInt(values map[string]any, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, nil
	}
	num, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func optionalString(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}
