// Package plan overlays staged plan items on live tracker issues and
// maintains the stored plan item list.
package plan

import "captainhub.app/relay/internal/domain"

// board is an insertion-ordered map keyed by issue key. Re-setting an
// existing key keeps its position.
type board struct {
	keys  []string
	byKey map[string]*domain.MergedIssue
}

func newBoard(capacity int) *board {
	return &board{
		keys:  make([]string, 0, capacity),
		byKey: make(map[string]*domain.MergedIssue, capacity),
	}
}

func (b *board) get(key string) (*domain.MergedIssue, bool) {
	m, ok := b.byKey[key]
	return m, ok
}

func (b *board) set(key string, m *domain.MergedIssue) {
	if _, ok := b.byKey[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.byKey[key] = m
}

func (b *board) list() []domain.MergedIssue {
	out := make([]domain.MergedIssue, 0, len(b.keys))
	for _, k := range b.keys {
		out = append(out, *b.byKey[k])
	}
	return out
}

// Merge overlays drafts on live issues. Passes run in a fixed order:
// deletes, then updates, then creates. A delete masks any update for the
// same key; a create replaces whatever is there. Live order is preserved
// and keys only present in drafts are appended.
func Merge(live, drafts []domain.Issue) []domain.MergedIssue {
	b := newBoard(len(live) + len(drafts))
	for _, issue := range live {
		issue.Change = domain.ChangeNone
		b.set(issue.Key, &domain.MergedIssue{Issue: issue})
	}

	for _, d := range drafts {
		if d.Change != domain.ChangeDelete {
			continue
		}
		entry := d
		if base, ok := b.get(d.Key); ok {
			entry = base.Issue
		}
		entry.Change = domain.ChangeDelete
		b.set(d.Key, &domain.MergedIssue{Issue: entry})
	}

	for _, d := range drafts {
		if d.Change != domain.ChangeUpdate {
			continue
		}
		base, ok := b.get(d.Key)
		if !ok {
			b.set(d.Key, &domain.MergedIssue{Issue: d})
			continue
		}
		if base.Change == domain.ChangeDelete {
			continue
		}
		merged := &domain.MergedIssue{
			Issue: domain.Issue{
				ID:     base.ID,
				Key:    base.Key,
				Change: domain.ChangeUpdate,
				Fields: OverlayFields(base.Fields, d.Fields),
			},
			Original: base.Original,
		}
		if base.Change == domain.ChangeNone {
			original := base.Fields
			merged.Original = &original
		}
		b.set(d.Key, merged)
	}

	for _, d := range drafts {
		if d.Change == domain.ChangeCreate {
			b.set(d.Key, &domain.MergedIssue{Issue: d})
		}
	}

	return b.list()
}

// OverlayFields returns base with every non-null member of patch applied.
// Members are replaced whole, never merged recursively.
func OverlayFields(base, patch domain.Fields) domain.Fields {
	out := base
	overlay(&out.Summary, patch.Summary)
	overlay(&out.Description, patch.Description)
	overlay(&out.Status, patch.Status)
	overlay(&out.IssueType, patch.IssueType)
	overlay(&out.Priority, patch.Priority)
	overlay(&out.Assignee, patch.Assignee)
	overlay(&out.Reporter, patch.Reporter)
	overlay(&out.Creator, patch.Creator)
	overlay(&out.Project, patch.Project)
	overlay(&out.Parent, patch.Parent)
	overlay(&out.DueDate, patch.DueDate)
	overlay(&out.Created, patch.Created)
	overlay(&out.Updated, patch.Updated)
	if patch.Labels != nil {
		out.Labels = patch.Labels
	}
	if patch.Subtasks != nil {
		out.Subtasks = patch.Subtasks
	}
	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
