package dto

import (
	"encoding/json"
	"time"

	"captainhub.app/relay/internal/model"
)

type EventRecordResponse struct {
	ID               int64           `json:"id,string"`
	EventID          string          `json:"event_id"`
	DedupFingerprint string          `json:"dedup_fingerprint"`
	Source           string          `json:"source"`
	EventType        string          `json:"event_type"`
	ProjectKey       *string         `json:"project_key"`
	UES              json.RawMessage `json:"ues"`
	ForwardStatus    string          `json:"forward_status"`
	ForwardError     *string         `json:"forward_error,omitempty"`
	ForwardedAt      *time.Time      `json:"forwarded_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ListEventsResponse struct {
	Events []EventRecordResponse `json:"events"`
}

func ToEventRecordResponse(rec model.EventRecord) EventRecordResponse {
	return EventRecordResponse{
		ID:               rec.ID,
		EventID:          rec.EventID,
		DedupFingerprint: rec.DedupFingerprint,
		Source:           rec.Source,
		EventType:        rec.EventType,
		ProjectKey:       rec.ProjectKey,
		UES:              rec.Payload,
		ForwardStatus:    string(rec.ForwardStatus),
		ForwardError:     rec.ForwardError,
		ForwardedAt:      rec.ForwardedAt,
		CreatedAt:        rec.CreatedAt,
	}
}
