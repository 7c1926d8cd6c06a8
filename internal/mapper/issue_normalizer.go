package mapper

import "captainhub.app/relay/internal/domain"

// Alias lists are tried in order; the first non-null value wins.
var (
	issueTypeAliases = []string{"issuetype", "issueType", "issue_type"}
	dueDateAliases   = []string{"duedate", "due_date", "dueDate", "due", "targetDate", "target_date"}
	changeAliases    = []string{"change", "_change"}
)

// NormalizeIssue converts a raw issue, either a tracker search result or a
// staged plan item, into the canonical domain.Issue. It is pure and
// idempotent on its own JSON output. Returns nil for nil input.
func NormalizeIssue(raw map[string]any) *domain.Issue {
	if raw == nil {
		return nil
	}
	f := obj(raw["fields"])

	id := domain.PlaceholderIssueID
	if s := str(raw["id"]); s != nil {
		id = *s
	}

	change := domain.ChangeNone
	if s := strAt(raw, changeAliases...); s != nil {
		change = domain.ChangeKind(*s)
	}

	return &domain.Issue{
		ID:     id,
		Key:    deref(str(raw["key"])),
		Change: change,
		Fields: domain.Fields{
			Summary:     str(f["summary"]),
			Description: plainText(f["description"]),
			Status:      ReduceStatus(f["status"]),
			IssueType:   ReduceIssueType(firstOf(f, issueTypeAliases...)),
			Priority:    ReducePriority(f["priority"]),
			Assignee:    ReducePerson(f["assignee"]),
			Reporter:    ReducePerson(f["reporter"]),
			Creator:     ReducePerson(f["creator"]),
			Project:     ReduceProject(f["project"]),
			Parent:      ReduceIssueRef(f["parent"]),
			Labels:      reduceLabels(f["labels"]),
			DueDate:     strAt(f, dueDateAliases...),
			Created:     str(f["created"]),
			Updated:     str(f["updated"]),
			Subtasks:    reduceSubtasks(f["subtasks"]),
		},
	}
}

// NormalizeIssues normalizes a batch, skipping entries that are not objects.
func NormalizeIssues(raws []map[string]any) []domain.Issue {
	issues := make([]domain.Issue, 0, len(raws))
	for _, raw := range raws {
		if issue := NormalizeIssue(raw); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}
