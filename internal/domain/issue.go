package domain

// ChangeKind tags an issue with the mutation a plan stages for it.
type ChangeKind string

const (
	ChangeNone   ChangeKind = "none"
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// IsStaged reports whether the kind is one a plan item may carry.
func (k ChangeKind) IsStaged() bool {
	return k == ChangeCreate || k == ChangeUpdate || k == ChangeDelete
}

// PlaceholderIssueID is assigned to issues that have no tracker id yet (drafts).
const PlaceholderIssueID = "static-id"

// Issue is the canonical issue shape shared by live tracker issues and plan drafts.
// Key is the join key between the two.
type Issue struct {
	ID     string     `json:"id"`
	Key    string     `json:"key"`
	Change ChangeKind `json:"change,omitempty"`
	Fields Fields     `json:"fields"`
}

// Fields holds the issue attributes. A nil pointer or nil slice means the
// source did not carry the field (or carried null); merges rely on that.
type Fields struct {
	Summary     *string    `json:"summary,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	IssueType   *IssueType `json:"issuetype,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Assignee    *PersonRef `json:"assignee,omitempty"`
	Reporter    *PersonRef `json:"reporter,omitempty"`
	Creator     *PersonRef `json:"creator,omitempty"`
	Project     *Project   `json:"project,omitempty"`
	Parent      *IssueRef  `json:"parent,omitempty"`
	Labels      []string   `json:"labels"` // [] and null are distinct for merges
	DueDate     *string    `json:"duedate,omitempty"`
	Created     *string    `json:"created,omitempty"`
	Updated     *string    `json:"updated,omitempty"`
	Subtasks    []IssueRef `json:"subtasks"`
}

type Status struct {
	ID       *string         `json:"id,omitempty"`
	Name     *string         `json:"name,omitempty"`
	Category *StatusCategory `json:"statusCategory,omitempty"`
}

type StatusCategory struct {
	ID        *string `json:"id,omitempty"`
	Key       *string `json:"key,omitempty"`
	Name      *string `json:"name,omitempty"`
	ColorName *string `json:"colorName,omitempty"`
}

type IssueType struct {
	ID      *string `json:"id,omitempty"`
	Name    *string `json:"name,omitempty"`
	Subtask bool    `json:"subtask"`
}

type Priority struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// PersonRef is the reduced form of a tracker user (assignee, reporter, creator).
type PersonRef struct {
	AccountID    *string `json:"accountId,omitempty"`
	DisplayName  *string `json:"displayName,omitempty"`
	EmailAddress *string `json:"emailAddress,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
}

type Project struct {
	ID   *string `json:"id,omitempty"`
	Key  *string `json:"key,omitempty"`
	Name *string `json:"name,omitempty"`
}

// IssueRef points at another issue (parent or subtask).
type IssueRef struct {
	ID      *string `json:"id,omitempty"`
	Key     *string `json:"key,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// MergedIssue is one entry of the board view: a live issue with at most one
// plan item applied. Original holds the pre-update fields for diff display.
type MergedIssue struct {
	Issue
	Original *Fields `json:"_original,omitempty"`
}

// IsSubtask reports whether the issue type marks the issue as a subtask.
func (i Issue) IsSubtask() bool {
	return i.Fields.IssueType != nil && i.Fields.IssueType.Subtask
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
