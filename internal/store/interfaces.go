package store

import (
	"context"
	"errors"

	"captainhub.app/relay/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with a unique constraint.
var ErrConflict = errors.New("conflict")

// EventRecordStore persists normalized events.
type EventRecordStore interface {
	// ExistingFingerprints returns the subset of fingerprints already stored.
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
	// InsertIgnoreDuplicates inserts records and returns the fingerprints
	// actually written. Conflicting records are skipped, not updated.
	InsertIgnoreDuplicates(ctx context.Context, records []model.EventRecord) (map[string]int64, error)
	GetByID(ctx context.Context, id int64) (*model.EventRecord, error)
	ListByWorkspace(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error)
	MarkForwarded(ctx context.Context, id int64) error
	MarkForwardFailed(ctx context.Context, id int64, errMsg string) error
}

// WorkspaceStore defines the contract for workspace data access
type WorkspaceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Workspace, error)
	// Create returns ErrConflict when the project key is already owned.
	Create(ctx context.Context, ws *model.Workspace) error
	WorkspaceIDsByProjectKeys(ctx context.Context, keys []string) (map[string]int64, error)
	// SavePlan replaces the stored plan; a nil plan clears it.
	SavePlan(ctx context.Context, id int64, plan []byte) (*model.Workspace, error)
}
