package queries

import "github.com/jackc/pgx/v5/pgtype"

type EventRecord struct {
	ID               int64              `json:"id"`
	EventID          string             `json:"event_id"`
	DedupFingerprint string             `json:"dedup_fingerprint"`
	Source           string             `json:"source"`
	EventType        string             `json:"event_type"`
	ProjectKey       *string            `json:"project_key"`
	WorkspaceID      *int64             `json:"workspace_id"`
	Payload          []byte             `json:"payload"`
	ForwardStatus    string             `json:"forward_status"`
	ForwardError     *string            `json:"forward_error"`
	ForwardedAt      pgtype.Timestamptz `json:"forwarded_at"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
}

type Workspace struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	JiraProjectKey *string            `json:"jira_project_key"`
	Plan           []byte             `json:"plan"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}
