package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOnlineStateAtBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		ago  time.Duration
		want OnlineState
	}{
		{"just now", 0, StateOnline},
		{"one minute", time.Minute, StateOnline},
		{"exactly 15 minutes", 15 * time.Minute, StateOnline},
		{"just past 15 minutes", 15*time.Minute + time.Second, StateIdle},
		{"one hour", time.Hour, StateIdle},
		{"exactly 120 minutes", 120 * time.Minute, StateIdle},
		{"just past 120 minutes", 120*time.Minute + time.Second, StateOffline},
		{"one week", 7 * 24 * time.Hour, StateOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lastSeen := FormatLocalTime(now.Add(-tt.ago))
			assert.Equal(t, tt.want, OnlineStateAt(lastSeen, now))
		})
	}
}

func TestOnlineStateAtUnknown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	assert.Equal(t, StateUnknown, OnlineStateAt("", now))
	assert.Equal(t, StateUnknown, OnlineStateAt("not a timestamp", now))
	assert.Equal(t, StateUnknown, OnlineStateAt("2025-06-01T11:00:00Z", now))
}

func TestOnlineStateAtFutureTimestamp(t *testing.T) {
	// Clock skew can put last_seen slightly ahead of now; a negative
	// age still counts as online.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	lastSeen := FormatLocalTime(now.Add(2 * time.Minute))
	assert.Equal(t, StateOnline, OnlineStateAt(lastSeen, now))
}

func TestOnlineBadge(t *testing.T) {
	assert.Equal(t, StateBadge{Color: "green", Text: "Online"}, OnlineBadge(StateOnline))
	assert.Equal(t, StateBadge{Color: "gold", Text: "Idle"}, OnlineBadge(StateIdle))
	assert.Equal(t, StateBadge{Color: "red", Text: "Offline"}, OnlineBadge(StateOffline))
	assert.Equal(t, StateBadge{Color: "default", Text: "Unknown"}, OnlineBadge(StateUnknown))
}
