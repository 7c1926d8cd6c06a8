package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Payloads arrive as decoded JSON (map[string]any). These helpers read them
// without ever panicking: anything of the wrong shape reads as absent.

type variantKind int

const (
	variantAbsent variantKind = iota
	variantText
	variantObject
)

// variant resolves a field that trackers and drafts send either as a bare
// scalar ("In Progress") or as an object ({"id": "3", "name": "In Progress"}).
type variant struct {
	kind variantKind
	text string
	obj  map[string]any
}

func variantOf(v any) variant {
	if m, ok := v.(map[string]any); ok {
		return variant{kind: variantObject, obj: m}
	}
	if s := str(v); s != nil {
		return variant{kind: variantText, text: *s}
	}
	return variant{kind: variantAbsent}
}

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// str stringifies scalars. Objects, arrays and nil read as absent.
func str(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	return &s
}

// firstOf returns the first non-nil value among keys, in order.
func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func strAt(m map[string]any, keys ...string) *string {
	return str(firstOf(m, keys...))
}

// textAt is strAt with absent and empty collapsed to "".
func textAt(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != nil && *s != "" {
			return *s
		}
	}
	return ""
}

func boolAt(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// truncateUTF16 keeps the first n UTF-16 code units of s. A surrogate pair
// cut in half leaves U+FFFD in place of the lone half.
func truncateUTF16(s string, n int) string {
	if n <= 0 {
		return s
	}
	units := 0
	for pos, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		switch {
		case units+w <= n:
			units += w
			continue
		case units < n:
			return s[:pos] + string(utf8.RuneError)
		default:
			return s[:pos]
		}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// present reports whether v carries a value: not nil, not blank, not zero.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case json.Number:
		return t.String() != "" && t.String() != "0"
	case bool:
		return t
	}
	return true
}

// DecodePayload unmarshals a webhook body keeping numbers as json.Number,
// so tracker ids wider than 53 bits survive into event ids.
func DecodePayload(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func int64Of(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}
