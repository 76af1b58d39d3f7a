package core

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date string matches none of the
// accepted ISO 8601 layouts.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO 8601 date or date-time string. Layouts without
// an offset are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDateTime renders a timestamp the way transaction cards show it,
// e.g. "Jun 15, 2024 - 9:30 AM".
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 - 3:04 PM")
}
