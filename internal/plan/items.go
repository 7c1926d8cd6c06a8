package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
)

var ErrInvalidPlanItem = errors.New("invalid plan item")

// Item is one stored plan entry. Items come from planning tools in loosely
// structured shapes, so they are kept as decoded JSON.
type Item = map[string]any

// keyPaths lists where an item may carry its issue key, in lookup order.
var keyPaths = [][]string{
	{"issueKey"},
	{"issuekey"},
	{"key"},
	{"jiraKey"},
	{"jira_key"},
	{"issue", "key"},
	{"data", "key"},
	{"target", "key"},
	{"meta", "issueKey"},
}

// ParseItems decodes a stored plan. Anything other than an array reads as
// an empty plan, and non-object entries are dropped.
func ParseItems(raw []byte) []Item {
	if len(raw) == 0 {
		return []Item{}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []Item{}
	}
	arr, _ := decoded.([]any)
	items := make([]Item, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// NormalizeKey trims and upper-cases an issue key for comparison.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// CandidateKeys returns the distinct normalized issue keys an item carries.
func CandidateKeys(item Item) []string {
	seen := make(map[string]struct{}, len(keyPaths))
	var out []string
	for _, path := range keyPaths {
		k := NormalizeKey(scalarAt(item, path))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// RemoveByIssueKey removes the first item carrying key. The input slice is
// not modified.
func RemoveByIssueKey(items []Item, key string) (remaining []Item, removed Item, found bool) {
	want := NormalizeKey(key)
	if want == "" {
		return items, nil, false
	}
	for i, item := range items {
		for _, k := range CandidateKeys(item) {
			if k != want {
				continue
			}
			remaining = make([]Item, 0, len(items)-1)
			remaining = append(remaining, items[:i]...)
			remaining = append(remaining, items[i+1:]...)
			return remaining, item, true
		}
	}
	return items, nil, false
}

// Validate checks that every item stages a known change, and that updates
// and deletes name the issue they target.
func Validate(items []Item) error {
	for i, item := range items {
		issue := mapper.NormalizeIssue(item)
		if issue == nil {
			return fmt.Errorf("%w: item %d is null", ErrInvalidPlanItem, i)
		}
		if !issue.Change.IsStaged() {
			return fmt.Errorf("%w: item %d has change %q", ErrInvalidPlanItem, i, issue.Change)
		}
		if issue.Change != domain.ChangeCreate && len(CandidateKeys(item)) == 0 {
			return fmt.Errorf("%w: item %d (%s) has no issue key", ErrInvalidPlanItem, i, issue.Change)
		}
	}
	return nil
}

// Drafts normalizes stored items into draft issues for merging.
func Drafts(items []Item) []domain.Issue {
	return mapper.NormalizeIssues(items)
}

func scalarAt(item Item, path []string) string {
	var cur any = item
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[p]
	}
	switch v := cur.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		if v.String() == "0" {
			return ""
		}
		return v.String()
	}
	return ""
}
