package normalize

import (
	"strings"
	"time"
)

var capturedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NowUTC is the current instant in UTC at whole-second precision.
func NowUTC(now time.Time) time.Time {
	return now.UTC().Truncate(time.Second)
}

// ParseCapturedAt parses an ISO-8601 capture timestamp. A trailing Z is read as
// +00:00 and timestamps without an offset are taken as UTC. Blank input
// defaults to now. ok is false when s is present but not a valid instant.
func ParseCapturedAt(s string, now time.Time) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NowUTC(now), true
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}
	for _, layout := range capturedAtLayouts {
		if p, err := time.Parse(layout, s); err == nil {
			return p.UTC().Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}
