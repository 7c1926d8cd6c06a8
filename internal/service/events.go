package service

import (
	"context"
	"fmt"

	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/store"
)

const (
	DefaultEventListLimit = 50
	MaxEventListLimit     = 500
)

type EventQueryService interface {
	// List returns the newest events routed to a workspace.
	List(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error)
}

type eventQueryService struct {
	events     store.EventRecordStore
	workspaces store.WorkspaceStore
}

func NewEventQueryService(events store.EventRecordStore, workspaces store.WorkspaceStore) EventQueryService {
	return &eventQueryService{events: events, workspaces: workspaces}
}

func (s *eventQueryService) List(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultEventListLimit
	case limit > MaxEventListLimit:
		limit = MaxEventListLimit
	}

	if _, err := s.workspaces.GetByID(ctx, workspaceID); err != nil {
		return nil, workspaceErr(err)
	}

	records, err := s.events.ListByWorkspace(ctx, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	if records == nil {
		records = []model.EventRecord{}
	}
	return records, nil
}
