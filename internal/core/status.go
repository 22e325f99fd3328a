package core

import "time"

// OnlineState classifies device liveness from its last-seen timestamp.
type OnlineState string

const (
	StateOnline  OnlineState = "online"
	StateIdle    OnlineState = "idle"
	StateOffline OnlineState = "offline"
	StateUnknown OnlineState = "unknown"
)

const (
	onlineWindow = 15 * time.Minute
	idleWindow   = 120 * time.Minute
)

// OnlineStateAt classifies lastSeen (backend wire format) against now.
// Absent or unparseable input is StateUnknown. Boundaries are inclusive
// of the livelier tier: exactly 15 minutes ago is still online.
func OnlineStateAt(lastSeen string, now time.Time) OnlineState {
	if lastSeen == "" {
		return StateUnknown
	}
	t, err := ParseLocalTime(lastSeen)
	if err != nil {
		return StateUnknown
	}
	age := now.Sub(t)
	switch {
	case age <= onlineWindow:
		return StateOnline
	case age <= idleWindow:
		return StateIdle
	default:
		return StateOffline
	}
}

// GetOnlineState classifies lastSeen against the current clock.
func GetOnlineState(lastSeen string) OnlineState {
	return OnlineStateAt(lastSeen, time.Now())
}

// StateBadge is a display color/text pair for a liveness state.
type StateBadge struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

// OnlineBadge maps a state to its dashboard badge.
func OnlineBadge(s OnlineState) StateBadge {
	switch s {
	case StateOnline:
		return StateBadge{Color: "green", Text: "Online"}
	case StateIdle:
		return StateBadge{Color: "gold", Text: "Idle"}
	case StateOffline:
		return StateBadge{Color: "red", Text: "Offline"}
	default:
		return StateBadge{Color: "default", Text: "Unknown"}
	}
}
