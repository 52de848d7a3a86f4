// Package timeparse normalizes the mixed timestamp formats that news
// sources emit into UTC instants. Formats are tried in a fixed order so
// the same input always resolves the same way.
package timeparse

import (
	"errors"
	"strings"
	"time"
)

// ErrUnparsable marks a timestamp no known layout matched. Callers drop
// the event rather than guess at its age.
var ErrUnparsable = errors.New("timeparse: unparsable timestamp")

// layouts in resolution order. Zone-aware layouts come first; layouts
// without an offset are interpreted as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999", // ISO 8601 without offset, assume UTC
	"2006-01-02T15:04:05",
	"20060102150405", // compact form used by some wire feeds
	time.RFC1123Z,    // RFC 2822 with numeric zone
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse converts a raw timestamp string to a UTC time. It returns
// ErrUnparsable when no layout matches.
func Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrUnparsable
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.UTC(), nil
	}
	return time.Time{}, ErrUnparsable
}
