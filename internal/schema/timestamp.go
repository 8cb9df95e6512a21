package schema

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC;
// fractional seconds are accepted after the seconds field by every layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// utcZoneNames are the only zone abbreviations accepted. Any other
// abbreviation would be resolved against the host's zone, or read as UTC
// when the host does not know it.
var utcZoneNames = map[string]bool{"GMT": true, "UTC": true}

// ParseTimestamp parses any accepted timestamp form ("Tue, 27 May 2025
// 00:12:31 GMT", "2025-05-27T00:12:31Z", "2025-06-01T06:12:45.616871", ...)
// and returns the instant in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("invalid date %q: empty value", s)
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		if layout == time.RFC1123 || layout == time.RFC850 {
			name, _ := t.Zone()
			if !utcZoneNames[name] {
				return time.Time{}, fmt.Errorf("invalid date %q: zone %q is ambiguous, use GMT or a numeric offset", s, name)
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 1123 or ISO 8601", s)
}

// FormatTimestamp renders t in the canonical form every consumer receives.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
