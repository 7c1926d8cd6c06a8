package store

import (
	"context"
	"errors"
	"time"

	"captainhub.app/relay/core/db/queries"
	"captainhub.app/relay/internal/model"
	"github.com/jackc/pgx/v5"
)

type eventRecordStore struct {
	queries *queries.Queries
}

func newEventRecordStore(queries *queries.Queries) EventRecordStore {
	return &eventRecordStore{queries: queries}
}

func (s *eventRecordStore) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(fingerprints) == 0 {
		return existing, nil
	}
	rows, err := s.queries.ListExistingFingerprints(ctx, fingerprints)
	if err != nil {
		return nil, err
	}
	for _, fp := range rows {
		existing[fp] = struct{}{}
	}
	return existing, nil
}

func (s *eventRecordStore) InsertIgnoreDuplicates(ctx context.Context, records []model.EventRecord) (map[string]int64, error) {
	inserted := make(map[string]int64, len(records))
	if len(records) == 0 {
		return inserted, nil
	}

	params := queries.InsertEventRecordsParams{
		IDs:               make([]int64, len(records)),
		EventIDs:          make([]string, len(records)),
		DedupFingerprints: make([]string, len(records)),
		Sources:           make([]string, len(records)),
		EventTypes:        make([]string, len(records)),
		ProjectKeys:       make([]*string, len(records)),
		WorkspaceIDs:      make([]*int64, len(records)),
		Payloads:          make([]string, len(records)),
		ForwardStatuses:   make([]string, len(records)),
	}
	for i, r := range records {
		status := r.ForwardStatus
		if status == "" {
			status = model.ForwardStatusPending
		}
		params.IDs[i] = r.ID
		params.EventIDs[i] = r.EventID
		params.DedupFingerprints[i] = r.DedupFingerprint
		params.Sources[i] = r.Source
		params.EventTypes[i] = r.EventType
		params.ProjectKeys[i] = r.ProjectKey
		params.WorkspaceIDs[i] = r.WorkspaceID
		params.Payloads[i] = string(r.Payload)
		params.ForwardStatuses[i] = string(status)
	}

	rows, err := s.queries.InsertEventRecords(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		inserted[row.DedupFingerprint] = row.ID
	}
	return inserted, nil
}

func (s *eventRecordStore) GetByID(ctx context.Context, id int64) (*model.EventRecord, error) {
	row, err := s.queries.GetEventRecord(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toEventRecordModel(row), nil
}

func (s *eventRecordStore) ListByWorkspace(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error) {
	rows, err := s.queries.ListEventRecordsByWorkspace(ctx, queries.ListEventRecordsByWorkspaceParams{
		WorkspaceID: workspaceID,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.EventRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toEventRecordModel(row))
	}
	return result, nil
}

func (s *eventRecordStore) MarkForwarded(ctx context.Context, id int64) error {
	return s.queries.MarkEventRecordForwarded(ctx, id)
}

func (s *eventRecordStore) MarkForwardFailed(ctx context.Context, id int64, errMsg string) error {
	return s.queries.MarkEventRecordForwardFailed(ctx, queries.MarkEventRecordForwardFailedParams{
		ID:           id,
		ForwardError: &errMsg,
	})
}

func toEventRecordModel(row queries.EventRecord) *model.EventRecord {
	var forwardedAt *time.Time
	if row.ForwardedAt.Valid {
		forwardedAt = &row.ForwardedAt.Time
	}
	return &model.EventRecord{
		ID:               row.ID,
		EventID:          row.EventID,
		DedupFingerprint: row.DedupFingerprint,
		Source:           row.Source,
		EventType:        row.EventType,
		ProjectKey:       row.ProjectKey,
		WorkspaceID:      row.WorkspaceID,
		Payload:          row.Payload,
		ForwardStatus:    model.ForwardStatus(row.ForwardStatus),
		ForwardError:     row.ForwardError,
		ForwardedAt:      forwardedAt,
		CreatedAt:        row.CreatedAt.Time,
	}
}
