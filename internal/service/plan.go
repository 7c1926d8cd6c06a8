package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/plan"
	"captainhub.app/relay/internal/store"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrPlanItemNotFound  = errors.New("plan item not found")
	ErrIssueKeyRequired  = errors.New("issue key is required")
)

// Board is the merged view of live issues and the staged plan.
type Board struct {
	Issues  []domain.MergedIssue `json:"issues"`
	Summary plan.Summary         `json:"summary"`
}

type PlanService interface {
	// Board merges the caller-supplied live tracker issues with the
	// workspace's stored plan.
	Board(ctx context.Context, workspaceID int64, live []map[string]any) (*Board, error)
	GetPlan(ctx context.Context, workspaceID int64) ([]plan.Item, error)
	ReplacePlan(ctx context.Context, workspaceID int64, items []plan.Item) ([]plan.Item, error)
	ClearPlan(ctx context.Context, workspaceID int64) error
	// RemoveItem drops the first plan item carrying issueKey and returns it.
	RemoveItem(ctx context.Context, workspaceID int64, issueKey string) (plan.Item, error)
}

type planService struct {
	workspaces store.WorkspaceStore
	txRunner   TxRunner
	logger     *slog.Logger
}

func NewPlanService(workspaces store.WorkspaceStore, txRunner TxRunner, logger *slog.Logger) PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &planService{
		workspaces: workspaces,
		txRunner:   txRunner,
		logger:     logger,
	}
}

func (s *planService) Board(ctx context.Context, workspaceID int64, live []map[string]any) (*Board, error) {
	items, err := s.GetPlan(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	merged := plan.Merge(mapper.NormalizeIssues(live), plan.Drafts(items))
	return &Board{Issues: merged, Summary: plan.Summarize(merged)}, nil
}

func (s *planService) GetPlan(ctx context.Context, workspaceID int64) ([]plan.Item, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, workspaceErr(err)
	}
	return plan.ParseItems(ws.Plan), nil
}

func (s *planService) ReplacePlan(ctx context.Context, workspaceID int64, items []plan.Item) ([]plan.Item, error) {
	if items == nil {
		items = []plan.Item{}
	}
	if err := plan.Validate(items); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding plan: %w", err)
	}

	ws, err := s.workspaces.SavePlan(ctx, workspaceID, raw)
	if err != nil {
		return nil, workspaceErr(err)
	}
	s.logger.InfoContext(ctx, "plan replaced", "workspace_id", workspaceID, "items", len(items))
	return plan.ParseItems(ws.Plan), nil
}

func (s *planService) ClearPlan(ctx context.Context, workspaceID int64) error {
	if _, err := s.workspaces.SavePlan(ctx, workspaceID, nil); err != nil {
		return workspaceErr(err)
	}
	s.logger.InfoContext(ctx, "plan cleared", "workspace_id", workspaceID)
	return nil
}

func (s *planService) RemoveItem(ctx context.Context, workspaceID int64, issueKey string) (plan.Item, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, ErrIssueKeyRequired
	}

	var removed plan.Item
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		ws, err := sp.Workspaces().GetByIDForUpdate(ctx, workspaceID)
		if err != nil {
			return workspaceErr(err)
		}

		remaining, item, found := plan.RemoveByIssueKey(plan.ParseItems(ws.Plan), issueKey)
		if !found {
			return fmt.Errorf("%w: %s", ErrPlanItemNotFound, plan.NormalizeKey(issueKey))
		}

		raw, err := json.Marshal(remaining)
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		if _, err := sp.Workspaces().SavePlan(ctx, workspaceID, raw); err != nil {
			return workspaceErr(err)
		}
		removed = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan item removed", "workspace_id", workspaceID, "issue_key", plan.NormalizeKey(issueKey))
	return removed, nil
}

func workspaceErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrWorkspaceNotFound
	}
	return fmt.Errorf("loading workspace: %w", err)
}
