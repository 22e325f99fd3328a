// internal/core/time.go
package core

import (
	"bytes"
	"fmt"
	"time"
)

// TimeLayout is the wire format for all timestamps exchanged with the
// backend. Values are naive local time, no zone suffix.
const TimeLayout = "2006-01-02 15:04:05"

// ParseLocalTime parses a wire timestamp in the server's local zone.
func ParseLocalTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatLocalTime renders t in the wire format.
func FormatLocalTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// LocalTime is a time.Time that marshals to the backend's naive local
// timestamp format. Null, empty and malformed values decode to the
// zero time rather than failing the enclosing document.
type LocalTime struct {
	time.Time
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + FormatLocalTime(t.Time) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, string(data), time.Local)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// String renders the wire format, or an empty string for the zero time.
func (t LocalTime) String() string {
	if t.IsZero() {
		return ""
	}
	return FormatLocalTime(t.Time)
}

// IsZero reports whether the value is unset.
func (t LocalTime) IsZero() bool {
	return t.Time.IsZero()
}
