package queries

import (
	"context"
)

const workspaceColumns = `id, name, jira_project_key, plan, created_at, updated_at`

func scanWorkspace(row interface{ Scan(dest ...any) error }) (Workspace, error) {
	var i Workspace
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.JiraProjectKey,
		&i.Plan,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createWorkspace = `-- name: CreateWorkspace :one
INSERT INTO workspaces (id, name, jira_project_key)
VALUES ($1, $2, $3)
RETURNING ` + workspaceColumns

type CreateWorkspaceParams struct {
	ID             int64
	Name           string
	JiraProjectKey *string
}

func (q *Queries) CreateWorkspace(ctx context.Context, arg CreateWorkspaceParams) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, createWorkspace, arg.ID, arg.Name, arg.JiraProjectKey))
}

const getWorkspace = `-- name: GetWorkspace :one
SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1
`

func (q *Queries) GetWorkspace(ctx context.Context, id int64) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, getWorkspace, id))
}

const getWorkspaceForUpdate = `-- name: GetWorkspaceForUpdate :one
SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetWorkspaceForUpdate(ctx context.Context, id int64) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, getWorkspaceForUpdate, id))
}

const listWorkspaceIDsByProjectKeys = `-- name: ListWorkspaceIDsByProjectKeys :many
SELECT jira_project_key, id FROM workspaces
WHERE jira_project_key = ANY($1::text[])
`

type ListWorkspaceIDsByProjectKeysRow struct {
	JiraProjectKey string `json:"jira_project_key"`
	ID             int64  `json:"id"`
}

func (q *Queries) ListWorkspaceIDsByProjectKeys(ctx context.Context, keys []string) ([]ListWorkspaceIDsByProjectKeysRow, error) {
	rows, err := q.db.Query(ctx, listWorkspaceIDsByProjectKeys, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListWorkspaceIDsByProjectKeysRow
	for rows.Next() {
		var i ListWorkspaceIDsByProjectKeysRow
		if err := rows.Scan(&i.JiraProjectKey, &i.ID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateWorkspacePlan = `-- name: UpdateWorkspacePlan :one
UPDATE workspaces
SET plan = $2::jsonb, updated_at = now()
WHERE id = $1
RETURNING ` + workspaceColumns

type UpdateWorkspacePlanParams struct {
	ID   int64
	Plan *string // nil clears the plan
}

func (q *Queries) UpdateWorkspacePlan(ctx context.Context, arg UpdateWorkspacePlanParams) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, updateWorkspacePlan, arg.ID, arg.Plan))
}
