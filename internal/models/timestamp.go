package models

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when no supported format matches.
var ErrInvalidTimestamp = errors.New("invalid timestamp format")

// SupportedTimestampFormats lists formats we attempt to parse. The list
// covers RFC3339 variants plus the zone-less isoformat strings some
// device firmware emits.
var SupportedTimestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999-07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp attempts to parse a timestamp string into time.Time.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)

	for _, format := range SupportedTimestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidTimestamp
}
