package dto

import (
	"time"

	"captainhub.app/relay/internal/model"
)

type CreateWorkspaceRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=255"`
	JiraProjectKey *string `json:"jira_project_key,omitempty" binding:"omitempty,max=32"`
}

type WorkspaceResponse struct {
	ID             int64     `json:"id,string"`
	Name           string    `json:"name"`
	JiraProjectKey *string   `json:"jira_project_key"`
	HasPlan        bool      `json:"has_plan"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToWorkspaceResponse(ws *model.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:             ws.ID,
		Name:           ws.Name,
		JiraProjectKey: ws.JiraProjectKey,
		HasPlan:        len(ws.Plan) > 0 && string(ws.Plan) != "null",
		CreatedAt:      ws.CreatedAt,
		UpdatedAt:      ws.UpdatedAt,
	}
}
