// internal/core/series.go
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Bucket tokens accepted by the telemetry endpoints. BucketRaw means
// no aggregation (the bucket parameter is omitted from the request).
const (
	BucketRaw = ""
	Bucket1m  = "1m"
	Bucket10m = "10m"
	Bucket1h  = "1h"
)

// ValidBucket reports whether s is an accepted bucket token.
func ValidBucket(s string) bool {
	switch s {
	case BucketRaw, Bucket1m, Bucket10m, Bucket1h:
		return true
	}
	return false
}

// SeriesPoint is one (timestamp, value) pair of a chart series. The
// timestamp keeps the backend wire form.
type SeriesPoint struct {
	TS    string  `json:"ts"`
	Value float64 `json:"value"`
}

// Series is one chart line, keyed by channel code.
type Series struct {
	Code   string        `json:"code"`
	Points []SeriesPoint `json:"points"`
}

// BuildSeries groups a flat telemetry response into one series per
// channel code, preserving arrival order within each code. Values that
// do not coerce to a finite number are dropped silently; a bad sample
// is a data-quality issue, not an error. Pure: identical input yields
// identical output, and the input slice is never modified.
func BuildSeries(points []TelemetryPoint) []Series {
	byCode := make(map[string]*Series)
	var order []string

	for _, p := range points {
		code := p.Code
		if code == "" {
			code = "UNKNOWN"
		}
		v, ok := coerceFinite(p.Value)
		if !ok {
			continue
		}
		s, exists := byCode[code]
		if !exists {
			s = &Series{Code: code}
			byCode[code] = s
			order = append(order, code)
		}
		s.Points = append(s.Points, SeriesPoint{TS: p.TS, Value: v})
	}

	out := make([]Series, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

func coerceFinite(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// SeriesStats summarizes one series for tabular display.
type SeriesStats struct {
	Code  string  `json:"code"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Last  float64 `json:"last"`
}

// Stats computes count/min/max/last for a series. Zero-valued stats
// for an empty series.
func (s Series) Stats() SeriesStats {
	st := SeriesStats{Code: s.Code, Count: len(s.Points)}
	for i, p := range s.Points {
		if i == 0 || p.Value < st.Min {
			st.Min = p.Value
		}
		if i == 0 || p.Value > st.Max {
			st.Max = p.Value
		}
		st.Last = p.Value
	}
	return st
}

// TimeRange is a half-open query window in backend wire format. Empty
// fields mean unbounded on that side (backend default applies).
type TimeRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// LastRange builds the range covering the trailing d up to now.
func LastRange(d time.Duration, now time.Time) TimeRange {
	return TimeRange{
		From: FormatLocalTime(now.Add(-d)),
		To:   FormatLocalTime(now),
	}
}
