package model

import (
	"encoding/json"
	"time"
)

// Workspace owns the events of one tracker project and holds its staged plan.
type Workspace struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	JiraProjectKey *string         `json:"jira_project_key,omitempty"`
	Plan           json.RawMessage `json:"plan,omitempty"` // null when no plan is staged
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
