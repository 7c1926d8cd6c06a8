package queries

import (
	"context"
)

const eventRecordColumns = `id, event_id, dedup_fingerprint, source, event_type, project_key, workspace_id,
       payload, forward_status, forward_error, forwarded_at, created_at`

func scanEventRecord(row interface{ Scan(dest ...any) error }) (EventRecord, error) {
	var i EventRecord
	err := row.Scan(
		&i.ID,
		&i.EventID,
		&i.DedupFingerprint,
		&i.Source,
		&i.EventType,
		&i.ProjectKey,
		&i.WorkspaceID,
		&i.Payload,
		&i.ForwardStatus,
		&i.ForwardError,
		&i.ForwardedAt,
		&i.CreatedAt,
	)
	return i, err
}

const listExistingFingerprints = `-- name: ListExistingFingerprints :many
SELECT dedup_fingerprint FROM event_records
WHERE dedup_fingerprint = ANY($1::text[])
`

func (q *Queries) ListExistingFingerprints(ctx context.Context, fingerprints []string) ([]string, error) {
	rows, err := q.db.Query(ctx, listExistingFingerprints, fingerprints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		items = append(items, fp)
	}
	return items, rows.Err()
}

const insertEventRecords = `-- name: InsertEventRecords :many
INSERT INTO event_records (
    id, event_id, dedup_fingerprint, source, event_type, project_key, workspace_id, payload, forward_status
)
SELECT u.id, u.event_id, u.dedup_fingerprint, u.source, u.event_type, u.project_key, u.workspace_id,
       u.payload::jsonb, u.forward_status
FROM unnest(
    $1::bigint[], $2::text[], $3::text[], $4::text[], $5::text[],
    $6::text[], $7::bigint[], $8::text[], $9::text[]
) AS u(id, event_id, dedup_fingerprint, source, event_type, project_key, workspace_id, payload, forward_status)
ON CONFLICT DO NOTHING
RETURNING id, dedup_fingerprint
`

// InsertEventRecordsParams holds one column slice per inserted field. All
// slices must have the same length.
type InsertEventRecordsParams struct {
	IDs               []int64
	EventIDs          []string
	DedupFingerprints []string
	Sources           []string
	EventTypes        []string
	ProjectKeys       []*string
	WorkspaceIDs      []*int64
	Payloads          []string
	ForwardStatuses   []string
}

type InsertEventRecordsRow struct {
	ID               int64  `json:"id"`
	DedupFingerprint string `json:"dedup_fingerprint"`
}

// InsertEventRecords bulk inserts rows, silently skipping any row whose
// fingerprint or event id is already stored.
func (q *Queries) InsertEventRecords(ctx context.Context, arg InsertEventRecordsParams) ([]InsertEventRecordsRow, error) {
	rows, err := q.db.Query(ctx, insertEventRecords,
		arg.IDs,
		arg.EventIDs,
		arg.DedupFingerprints,
		arg.Sources,
		arg.EventTypes,
		arg.ProjectKeys,
		arg.WorkspaceIDs,
		arg.Payloads,
		arg.ForwardStatuses,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InsertEventRecordsRow
	for rows.Next() {
		var i InsertEventRecordsRow
		if err := rows.Scan(&i.ID, &i.DedupFingerprint); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getEventRecord = `-- name: GetEventRecord :one
SELECT ` + eventRecordColumns + `
FROM event_records WHERE id = $1
`

func (q *Queries) GetEventRecord(ctx context.Context, id int64) (EventRecord, error) {
	return scanEventRecord(q.db.QueryRow(ctx, getEventRecord, id))
}

const listEventRecordsByWorkspace = `-- name: ListEventRecordsByWorkspace :many
SELECT ` + eventRecordColumns + `
FROM event_records WHERE workspace_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

type ListEventRecordsByWorkspaceParams struct {
	WorkspaceID int64
	Limit       int32
}

func (q *Queries) ListEventRecordsByWorkspace(ctx context.Context, arg ListEventRecordsByWorkspaceParams) ([]EventRecord, error) {
	rows, err := q.db.Query(ctx, listEventRecordsByWorkspace, arg.WorkspaceID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EventRecord
	for rows.Next() {
		i, err := scanEventRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markEventRecordForwarded = `-- name: MarkEventRecordForwarded :exec
UPDATE event_records
SET forward_status = 'forwarded', forward_error = NULL, forwarded_at = now()
WHERE id = $1
`

func (q *Queries) MarkEventRecordForwarded(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, markEventRecordForwarded, id)
	return err
}

const markEventRecordForwardFailed = `-- name: MarkEventRecordForwardFailed :exec
UPDATE event_records
SET forward_status = 'failed', forward_error = $2
WHERE id = $1
`

type MarkEventRecordForwardFailedParams struct {
	ID           int64
	ForwardError *string
}

func (q *Queries) MarkEventRecordForwardFailed(ctx context.Context, arg MarkEventRecordForwardFailedParams) error {
	_, err := q.db.Exec(ctx, markEventRecordForwardFailed, arg.ID, arg.ForwardError)
	return err
}
