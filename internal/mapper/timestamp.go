package mapper

import (
	"encoding/json"
	"strings"
	"time"
)

// ISOLayout is the millisecond-precision UTC form used for every UES timestamp.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Jira emits "2024-03-01T10:15:30.123+0000"; other sources send RFC 3339.
// Fractional seconds are accepted by every layout.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp reads an ISO-ish string or epoch milliseconds. Anything
// unparseable yields fallback.
func parseTimestamp(v any, fallback time.Time) time.Time {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC()
			}
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case int64:
		return time.UnixMilli(t).UTC()
	}
	return fallback
}

func formatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// minuteISO zeroes seconds and milliseconds. Redeliveries of one logical
// event land in the same minute bucket.
func minuteISO(t time.Time) string {
	return formatISO(t.UTC().Truncate(time.Minute))
}
