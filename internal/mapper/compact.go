package mapper

import "captainhub.app/relay/internal/domain"

// Compact strips nil, "", empty arrays and empty objects from a decoded JSON
// tree, recursively. Objects that become empty after stripping are removed
// as well. A fully empty input yields nil.
func Compact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if c := Compact(val); !isEmptyValue(c) {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if c := Compact(val); c != nil {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		if len(t) == 0 {
			return nil
		}
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return v
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// compactEvent applies the same stripping to the typed event: string and
// slice members are dropped by omitempty, so only empty sub-objects and the
// free-form ext tree need clearing here.
func compactEvent(ev *domain.UnifiedEvent) {
	if ev.Refs != nil && ev.Refs.Jira.IsZero() {
		ev.Refs.Jira = nil
	}
	if ev.Actor.IsZero() {
		ev.Actor = nil
	}
	if ev.Artefact.IsZero() {
		ev.Artefact = nil
	}
	if ev.Refs.IsZero() {
		ev.Refs = nil
	}
	if ev.Privacy.IsZero() {
		ev.Privacy = nil
	}
	if ev.Provenance.IsZero() {
		ev.Provenance = nil
	}
	if ext, ok := Compact(ev.Ext).(map[string]any); ok {
		ev.Ext = ext
	} else {
		ev.Ext = nil
	}
	if len(ev.Labels) == 0 {
		ev.Labels = nil
	}
}
