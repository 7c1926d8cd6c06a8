package handler_test

import (
	"context"

	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/plan"
	"captainhub.app/relay/internal/service"
)

type mockPlanService struct {
	boardFn      func(ctx context.Context, workspaceID int64, live []map[string]any) (*service.Board, error)
	getPlanFn    func(ctx context.Context, workspaceID int64) ([]plan.Item, error)
	replaceFn    func(ctx context.Context, workspaceID int64, items []plan.Item) ([]plan.Item, error)
	clearFn      func(ctx context.Context, workspaceID int64) error
	removeItemFn func(ctx context.Context, workspaceID int64, issueKey string) (plan.Item, error)
}

func (m *mockPlanService) Board(ctx context.Context, workspaceID int64, live []map[string]any) (*service.Board, error) {
	if m.boardFn != nil {
		return m.boardFn(ctx, workspaceID, live)
	}
	return &service.Board{}, nil
}

func (m *mockPlanService) GetPlan(ctx context.Context, workspaceID int64) ([]plan.Item, error) {
	if m.getPlanFn != nil {
		return m.getPlanFn(ctx, workspaceID)
	}
	return []plan.Item{}, nil
}

func (m *mockPlanService) ReplacePlan(ctx context.Context, workspaceID int64, items []plan.Item) ([]plan.Item, error) {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, workspaceID, items)
	}
	return items, nil
}

func (m *mockPlanService) ClearPlan(ctx context.Context, workspaceID int64) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, workspaceID)
	}
	return nil
}

func (m *mockPlanService) RemoveItem(ctx context.Context, workspaceID int64, issueKey string) (plan.Item, error) {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, workspaceID, issueKey)
	}
	return nil, nil
}

type mockEventQueryService struct {
	listFn func(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error)
}

func (m *mockEventQueryService) List(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workspaceID, limit)
	}
	return []model.EventRecord{}, nil
}

type mockWorkspaceService struct {
	createFn func(ctx context.Context, name string, projectKey *string) (*model.Workspace, error)
	getFn    func(ctx context.Context, workspaceID int64) (*model.Workspace, error)
}

func (m *mockWorkspaceService) Create(ctx context.Context, name string, projectKey *string) (*model.Workspace, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, projectKey)
	}
	return &model.Workspace{ID: 1, Name: name, JiraProjectKey: projectKey}, nil
}

func (m *mockWorkspaceService) Get(ctx context.Context, workspaceID int64) (*model.Workspace, error) {
	if m.getFn != nil {
		return m.getFn(ctx, workspaceID)
	}
	return &model.Workspace{ID: workspaceID}, nil
}
