package store

import (
	"context"
	"errors"

	"captainhub.app/relay/core/db/queries"
	"captainhub.app/relay/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type workspaceStore struct {
	queries *queries.Queries
}

func newWorkspaceStore(queries *queries.Queries) WorkspaceStore {
	return &workspaceStore{queries: queries}
}

func (s *workspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	row, err := s.queries.GetWorkspace(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWorkspaceModel(row), nil
}

func (s *workspaceStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Workspace, error) {
	row, err := s.queries.GetWorkspaceForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWorkspaceModel(row), nil
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row, err := s.queries.CreateWorkspace(ctx, queries.CreateWorkspaceParams{
		ID:             ws.ID,
		Name:           ws.Name,
		JiraProjectKey: ws.JiraProjectKey,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return err
	}
	*ws = *toWorkspaceModel(row)
	return nil
}

func (s *workspaceStore) WorkspaceIDsByProjectKeys(ctx context.Context, keys []string) (map[string]int64, error) {
	owners := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return owners, nil
	}
	rows, err := s.queries.ListWorkspaceIDsByProjectKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		owners[row.JiraProjectKey] = row.ID
	}
	return owners, nil
}

func (s *workspaceStore) SavePlan(ctx context.Context, id int64, plan []byte) (*model.Workspace, error) {
	var arg *string
	if plan != nil {
		p := string(plan)
		arg = &p
	}
	row, err := s.queries.UpdateWorkspacePlan(ctx, queries.UpdateWorkspacePlanParams{ID: id, Plan: arg})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWorkspaceModel(row), nil
}

func toWorkspaceModel(row queries.Workspace) *model.Workspace {
	return &model.Workspace{
		ID:             row.ID,
		Name:           row.Name,
		JiraProjectKey: row.JiraProjectKey,
		Plan:           row.Plan,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
