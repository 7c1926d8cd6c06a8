package mapper

import (
	"strings"

	"captainhub.app/relay/internal/domain"
)

// Reducers shrink verbose tracker objects into the minimal canonical
// sub-records of domain.Fields. They accept nil, partial objects or bare
// strings and return nil when nothing usable is present.

var subtaskTypeNames = map[string]struct{}{
	"sub-task": {},
	"subtask":  {},
	"sub task": {},
}

// IsSubtaskName reports whether an issue type name denotes a subtask.
func IsSubtaskName(name string) bool {
	_, ok := subtaskTypeNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func ReducePerson(v any) *domain.PersonRef {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.PersonRef{DisplayName: &in.text}
	case variantObject:
		u := in.obj
		avatar := str(obj(u["avatarUrls"])["48x48"])
		if avatar == nil {
			avatar = strAt(u, "avatarUrl", "avatar_url")
		}
		return &domain.PersonRef{
			AccountID:    strAt(u, "accountId", "account_id"),
			DisplayName:  strAt(u, "displayName", "display_name"),
			EmailAddress: strAt(u, "emailAddress", "email"),
			AvatarURL:    avatar,
		}
	}
	return nil
}

func ReduceStatus(v any) *domain.Status {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.Status{Name: &in.text}
	case variantObject:
		s := in.obj
		status := &domain.Status{
			ID:   str(s["id"]),
			Name: str(s["name"]),
		}
		if c := obj(s["statusCategory"]); c != nil {
			status.Category = &domain.StatusCategory{
				ID:        str(c["id"]),
				Key:       str(c["key"]),
				Name:      str(c["name"]),
				ColorName: str(c["colorName"]),
			}
		}
		return status
	}
	return nil
}

// ReduceIssueType accepts a type name or a type object. Explicit subtask /
// isSubtask booleans win over the name heuristic.
func ReduceIssueType(v any) *domain.IssueType {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.IssueType{Name: &in.text, Subtask: IsSubtaskName(in.text)}
	case variantObject:
		t := in.obj
		name := strAt(t, "name", "type")
		sub, ok := boolAt(t, "subtask")
		if !ok {
			sub, ok = boolAt(t, "isSubtask")
		}
		if !ok {
			sub = IsSubtaskName(deref(name))
		}
		return &domain.IssueType{
			ID:      str(t["id"]),
			Name:    name,
			Subtask: sub,
		}
	}
	return nil
}

func ReducePriority(v any) *domain.Priority {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.Priority{Name: &in.text}
	case variantObject:
		return &domain.Priority{
			ID:   str(in.obj["id"]),
			Name: str(in.obj["name"]),
		}
	}
	return nil
}

func ReduceProject(v any) *domain.Project {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.Project{Key: &in.text}
	case variantObject:
		return &domain.Project{
			ID:   str(in.obj["id"]),
			Key:  str(in.obj["key"]),
			Name: str(in.obj["name"]),
		}
	}
	return nil
}

// ReduceIssueRef reduces a parent or subtask reference. A bare string is
// taken as the issue key.
func ReduceIssueRef(v any) *domain.IssueRef {
	in := variantOf(v)
	switch in.kind {
	case variantText:
		return &domain.IssueRef{Key: &in.text}
	case variantObject:
		summary := str(obj(in.obj["fields"])["summary"])
		if summary == nil {
			summary = str(in.obj["summary"])
		}
		return &domain.IssueRef{
			ID:      str(in.obj["id"]),
			Key:     str(in.obj["key"]),
			Summary: summary,
		}
	}
	return nil
}

func reduceLabels(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != nil {
			labels = append(labels, *s)
		}
	}
	return labels
}

func reduceSubtasks(v any) []domain.IssueRef {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	refs := make([]domain.IssueRef, 0, len(items))
	for _, item := range items {
		if ref := ReduceIssueRef(item); ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs
}
