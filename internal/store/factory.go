package store

import (
	"captainhub.app/relay/core/db/queries"
)

// Stores bundles the stores over one Queries handle, so stores built
// inside a transaction all share it.
type Stores struct {
	events     EventRecordStore
	workspaces WorkspaceStore
}

func NewStores(q *queries.Queries) *Stores {
	return &Stores{
		events:     newEventRecordStore(q),
		workspaces: newWorkspaceStore(q),
	}
}

func (s *Stores) EventRecords() EventRecordStore { return s.events }

func (s *Stores) Workspaces() WorkspaceStore { return s.workspaces }
