package normalize

import (
	"fmt"
	"time"
)

// dateLayouts are tried in order when parsing string timestamps. Zone-less
// layouts are interpreted as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an upstream timestamp into UTC. Accepted inputs are
// ISO-8601 strings (with or without a trailing Z), epoch seconds, and
// epoch milliseconds. A timestamp with no zone information is treated as
// already-UTC.
func ParseTime(v any) (time.Time, error) {
	switch value := v.(type) {
	case time.Time:
		return value.UTC(), nil
	case string:
		return parseTimeString(value)
	case float64:
		return parseEpoch(int64(value)), nil
	case int64:
		return parseEpoch(value), nil
	case int:
		return parseEpoch(int64(value)), nil
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is nil")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// parseEpoch interprets an integer as epoch seconds, or epoch milliseconds
// when the magnitude makes seconds implausible (after year 33658).
func parseEpoch(n int64) time.Time {
	const millisThreshold = int64(1e12)
	if n >= millisThreshold || n <= -millisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// Day truncates a timestamp to midnight UTC, the granularity every
// date-bucketed calculator works in.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
