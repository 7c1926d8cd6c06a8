package model

import (
	"encoding/json"
	"time"
)

type ForwardStatus string

const (
	ForwardStatusPending   ForwardStatus = "pending"
	ForwardStatusForwarded ForwardStatus = "forwarded"
	ForwardStatusFailed    ForwardStatus = "failed"
	// ForwardStatusSkipped marks events with no owning workspace.
	ForwardStatusSkipped ForwardStatus = "skipped"
)

// EventRecord is one persisted unified event. DedupFingerprint is unique.
type EventRecord struct {
	ID               int64           `json:"id"`
	EventID          string          `json:"event_id"`
	DedupFingerprint string          `json:"dedup_fingerprint"`
	Source           string          `json:"source"`
	EventType        string          `json:"event_type"`
	ProjectKey       *string         `json:"project_key,omitempty"`
	WorkspaceID      *int64          `json:"workspace_id,omitempty"`
	Payload          json.RawMessage `json:"payload"`
	ForwardStatus    ForwardStatus   `json:"forward_status"`
	ForwardError     *string         `json:"forward_error,omitempty"`
	ForwardedAt      *time.Time      `json:"forwarded_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
