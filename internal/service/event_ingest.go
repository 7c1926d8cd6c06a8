package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"captainhub.app/relay/common/id"
	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/internal/dedup"
	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/queue"
	"captainhub.app/relay/internal/store"
)

type IngestParams struct {
	Source   string
	Payloads []map[string]any
	TraceID  *string
}

// IngestedEvent describes one event written by a batch.
type IngestedEvent struct {
	EventRecordID int64  `json:"event_record_id"`
	EventID       string `json:"event_id"`
	Fingerprint   string `json:"dedup_fingerprint"`
	WorkspaceID   *int64 `json:"workspace_id"`
	Enqueued      bool   `json:"enqueued"`
}

type IngestResult struct {
	Received int             `json:"received"`
	Inserted int             `json:"inserted"`
	Notified int             `json:"notified"`
	Skipped  int             `json:"skipped"`
	Events   []IngestedEvent `json:"events"`
}

type EventIngestService interface {
	// IngestBatch normalizes, deduplicates and persists one webhook delivery
	// batch, then enqueues the owned events for forwarding.
	IngestBatch(ctx context.Context, params IngestParams) (*IngestResult, error)
}

type eventIngestService struct {
	normalizers *mapper.NormalizerRegistry
	gate        *dedup.Gate
	events      store.EventRecordStore
	queue       queue.Producer
	status      queue.StatusPublisher
	logger      *slog.Logger
}

func NewEventIngestService(
	normalizers *mapper.NormalizerRegistry,
	events store.EventRecordStore,
	resolver dedup.WorkspaceResolver,
	producer queue.Producer,
	status queue.StatusPublisher,
	logger *slog.Logger,
) EventIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventIngestService{
		normalizers: normalizers,
		gate:        dedup.NewGate(events, resolver, logger),
		events:      events,
		queue:       producer,
		status:      status,
		logger:      logger,
	}
}

func (s *eventIngestService) IngestBatch(ctx context.Context, params IngestParams) (*IngestResult, error) {
	result := &IngestResult{Received: len(params.Payloads), Events: []IngestedEvent{}}
	if len(params.Payloads) == 0 {
		return result, nil
	}

	normalizer, err := s.normalizers.Get(params.Source)
	if err != nil {
		return nil, err
	}

	sc := logger.StartSpan(ctx, "ingest.batch")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(logger.AttrBatchSize.Int(len(params.Payloads)))

	events := make([]*domain.UnifiedEvent, 0, len(params.Payloads))
	for _, body := range params.Payloads {
		if ev := normalizer.Normalize(body); ev != nil {
			events = append(events, ev)
		}
	}

	admitted, err := s.gate.Admit(ctx, events)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	if len(admitted) == 0 {
		result.Skipped = result.Received
		s.logger.InfoContext(ctx, "webhook batch fully deduplicated", "received", result.Received)
		return result, nil
	}

	records := make([]model.EventRecord, 0, len(admitted))
	byFingerprint := make(map[string]dedup.Admission, len(admitted))
	for _, adm := range admitted {
		rec, err := toEventRecord(adm)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		byFingerprint[rec.DedupFingerprint] = adm
	}

	inserted, err := s.events.InsertIgnoreDuplicates(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("persisting events: %w", err)
	}

	for _, rec := range records {
		recordID, ok := inserted[rec.DedupFingerprint]
		if !ok {
			continue
		}
		adm := byFingerprint[rec.DedupFingerprint]
		item := IngestedEvent{
			EventRecordID: recordID,
			EventID:       rec.EventID,
			Fingerprint:   rec.DedupFingerprint,
			WorkspaceID:   adm.WorkspaceID,
		}
		if adm.WorkspaceID != nil {
			item.Enqueued = s.enqueue(ctx, recordID, rec, adm.WorkspaceID, params.TraceID)
			s.publish(ctx, *adm.WorkspaceID, recordID, rec)
		}
		if item.Enqueued {
			result.Notified++
		}
		result.Events = append(result.Events, item)
	}

	result.Inserted = len(result.Events)
	result.Skipped = result.Received - result.Inserted
	s.logger.InfoContext(ctx, "webhook batch ingested",
		"received", result.Received,
		"inserted", result.Inserted,
		"notified", result.Notified,
		"skipped", result.Skipped)
	return result, nil
}

// enqueue failures leave the record pending; the row is already durable.
func (s *eventIngestService) enqueue(ctx context.Context, recordID int64, rec model.EventRecord, workspaceID *int64, traceID *string) bool {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		WorkspaceID:   workspaceID,
		EventRecordID: &recordID,
		EventID:       logger.Ptr(rec.EventID),
		Fingerprint:   logger.Ptr(rec.DedupFingerprint),
	})
	if s.queue == nil {
		return false
	}
	if err := s.queue.Enqueue(ctx, queue.EventMessage{
		EventRecordID: recordID,
		EventID:       rec.EventID,
		Fingerprint:   rec.DedupFingerprint,
		WorkspaceID:   workspaceID,
		EventType:     rec.EventType,
		TraceID:       traceID,
		Attempt:       1,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue event record", "error", err)
		return false
	}
	return true
}

func (s *eventIngestService) publish(ctx context.Context, workspaceID, recordID int64, rec model.EventRecord) {
	if s.status == nil {
		return
	}
	if err := s.status.Publish(ctx, workspaceID, queue.StatusUpdate{
		EventRecordID: recordID,
		EventID:       rec.EventID,
		EventType:     rec.EventType,
		Status:        string(rec.ForwardStatus),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event status", "error", err, "workspace_id", workspaceID)
	}
}

func toEventRecord(adm dedup.Admission) (model.EventRecord, error) {
	ev := adm.Event
	payload, err := json.Marshal(ev)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("encoding event %s: %w", ev.EventID, err)
	}

	status := model.ForwardStatusPending
	if adm.WorkspaceID == nil {
		status = model.ForwardStatusSkipped
	}

	rec := model.EventRecord{
		ID:               id.New(),
		EventID:          ev.EventID,
		DedupFingerprint: ev.DedupFingerprint,
		Source:           ev.Source,
		EventType:        string(ev.EventType),
		WorkspaceID:      adm.WorkspaceID,
		Payload:          payload,
		ForwardStatus:    status,
	}
	if ev.ProjectKey != "" {
		rec.ProjectKey = &ev.ProjectKey
	}
	return rec, nil
}
