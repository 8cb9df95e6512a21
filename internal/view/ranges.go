package view

import (
	"fmt"
	"time"
)

// Range presets offered by the dashboard's time-range picker.
var RangePresets = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// DefaultRange is the preset used when none is given.
const DefaultRange = "7d"

// RangeBounds returns the date range of a preset ending on now's day in loc.
func RangeBounds(preset string, now time.Time, loc *time.Location) (since, until time.Time, err error) {
	if preset == "" {
		preset = DefaultRange
	}
	days, ok := RangePresets[preset]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown range %q, expected 7d, 30d or 90d", preset)
	}
	if loc == nil {
		loc = time.UTC
	}
	until = now.In(loc)
	since = until.AddDate(0, 0, -days)
	return since, until, nil
}

// ParseDate parses a YYYY-MM-DD day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
