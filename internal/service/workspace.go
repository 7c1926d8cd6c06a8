package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"captainhub.app/relay/common/id"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/store"
)

var (
	ErrWorkspaceNameRequired = errors.New("workspace name is required")
	ErrProjectKeyTaken       = errors.New("project key already belongs to another workspace")
)

// WorkspaceService registers workspaces and the tracker project each one
// owns. Ingest routes events by that project key.
type WorkspaceService interface {
	Create(ctx context.Context, name string, projectKey *string) (*model.Workspace, error)
	Get(ctx context.Context, workspaceID int64) (*model.Workspace, error)
}

type workspaceService struct {
	workspaces store.WorkspaceStore
}

func NewWorkspaceService(workspaces store.WorkspaceStore) WorkspaceService {
	return &workspaceService{workspaces: workspaces}
}

func (s *workspaceService) Create(ctx context.Context, name string, projectKey *string) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWorkspaceNameRequired
	}

	ws := &model.Workspace{
		ID:             id.New(),
		Name:           name,
		JiraProjectKey: normalizeProjectKey(projectKey),
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrProjectKeyTaken, *ws.JiraProjectKey)
		}
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return ws, nil
}

func (s *workspaceService) Get(ctx context.Context, workspaceID int64) (*model.Workspace, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, workspaceErr(err)
	}
	return ws, nil
}

// normalizeProjectKey upper-cases the key the way Jira issues it; blank
// keys register a workspace that owns no project yet.
func normalizeProjectKey(key *string) *string {
	if key == nil {
		return nil
	}
	k := strings.ToUpper(strings.TrimSpace(*key))
	if k == "" {
		return nil
	}
	return &k
}
