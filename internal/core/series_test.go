package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeriesGroupsByCode(t *testing.T) {
	points := []TelemetryPoint{
		{Code: "T1", TS: "2025-06-01 10:00:00", Value: 55.0},
		{Code: "O2", TS: "2025-06-01 10:00:00", Value: 19.2},
		{Code: "T1", TS: "2025-06-01 10:01:00", Value: 56.5},
		{Code: "O2", TS: "2025-06-01 10:01:00", Value: 19.0},
	}
	series := BuildSeries(points)
	require.Len(t, series, 2)

	// First-seen code order, arrival order within each code.
	assert.Equal(t, "T1", series[0].Code)
	assert.Equal(t, []SeriesPoint{
		{TS: "2025-06-01 10:00:00", Value: 55.0},
		{TS: "2025-06-01 10:01:00", Value: 56.5},
	}, series[0].Points)
	assert.Equal(t, "O2", series[1].Code)
	assert.Len(t, series[1].Points, 2)
}

func TestBuildSeriesDropsBadValues(t *testing.T) {
	points := []TelemetryPoint{
		{Code: "T1", TS: "a", Value: 55.0},
		{Code: "T1", TS: "b", Value: "not a number"},
		{Code: "T1", TS: "c", Value: math.NaN()},
		{Code: "T1", TS: "d", Value: math.Inf(1)},
		{Code: "T1", TS: "e", Value: nil},
		{Code: "T1", TS: "f", Value: map[string]any{"v": 1}},
		{Code: "T1", TS: "g", Value: "57.25"},
	}
	series := BuildSeries(points)
	require.Len(t, series, 1)
	assert.Equal(t, []SeriesPoint{
		{TS: "a", Value: 55.0},
		{TS: "g", Value: 57.25},
	}, series[0].Points)
}

func TestBuildSeriesEmptyCode(t *testing.T) {
	series := BuildSeries([]TelemetryPoint{{Code: "", TS: "a", Value: 1.0}})
	require.Len(t, series, 1)
	assert.Equal(t, "UNKNOWN", series[0].Code)
}

func TestBuildSeriesEmptyInput(t *testing.T) {
	assert.Empty(t, BuildSeries(nil))
	assert.Empty(t, BuildSeries([]TelemetryPoint{}))
}

func TestSeriesStats(t *testing.T) {
	s := Series{Code: "T1", Points: []SeriesPoint{
		{TS: "a", Value: 55},
		{TS: "b", Value: 48},
		{TS: "c", Value: 61},
	}}
	st := s.Stats()
	assert.Equal(t, SeriesStats{Code: "T1", Count: 3, Min: 48, Max: 61, Last: 61}, st)

	empty := Series{Code: "T1"}
	assert.Equal(t, SeriesStats{Code: "T1"}, empty.Stats())
}

func TestValidBucket(t *testing.T) {
	for _, s := range []string{BucketRaw, Bucket1m, Bucket10m, Bucket1h} {
		assert.True(t, ValidBucket(s), "bucket=%q", s)
	}
	for _, s := range []string{"2m", "raw", "1H", " 1h"} {
		assert.False(t, ValidBucket(s), "bucket=%q", s)
	}
}

func TestLastRange(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	rng := LastRange(24*time.Hour, now)
	assert.Equal(t, "2025-05-31 12:00:00", rng.From)
	assert.Equal(t, "2025-06-01 12:00:00", rng.To)
}
