// internal/core/models.go
package core

// Device represents a composting-process controller as reported by the
// backend. Timestamps that classification logic depends on are kept in
// their raw wire form so malformed values degrade to "unknown" instead
// of failing the decode.
type Device struct {
	DeviceID int64  `json:"device_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`

	LastSeenAt string    `json:"last_seen_at,omitempty"`
	CreatedAt  LocalTime `json:"created_at,omitzero"`
	UpdatedAt  LocalTime `json:"updated_at,omitzero"`

	IsActive *bool `json:"is_active,omitempty"`

	PostTopic     string `json:"post_topic,omitempty"`
	ResponseTopic string `json:"response_topic,omitempty"`

	Note string `json:"note,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// Active reports whether the device is active; a missing flag counts
// as active, matching the backend default.
func (d *Device) Active() bool {
	return d.IsActive == nil || *d.IsActive
}

// ChannelLatest is the most recent reading embedded in a channel when
// the tree is requested with latest values. Value is nil when the
// backend could not coerce the stored sample to a number.
type ChannelLatest struct {
	Code    string   `json:"code"`
	TS      string   `json:"ts"`
	Value   *float64 `json:"value"`
	Unit    string   `json:"unit,omitempty"`
	Quality string   `json:"quality,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// Channel is one sensor/actuator data stream belonging to a device.
// Code is unique within a device.
type Channel struct {
	ChannelID int64 `json:"channel_id"`
	DeviceID  int64 `json:"device_id"`

	Code string `json:"code"`
	Name string `json:"name,omitempty"`
	Unit string `json:"unit,omitempty"`

	IsActive *bool `json:"is_active,omitempty"`

	Metric      string `json:"metric,omitempty"`
	Role        string `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`

	CreatedAt LocalTime `json:"created_at,omitzero"`
	UpdatedAt LocalTime `json:"updated_at,omitzero"`

	// Present only when the tree was fetched with latest values.
	Latest *ChannelLatest `json:"latest,omitempty"`
}

// Active reports whether the channel is active (missing flag = active).
func (c *Channel) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// DeviceTreeItem is a device with its channels, as returned by the
// devices tree endpoint.
type DeviceTreeItem struct {
	Device
	Channels []Channel `json:"channels"`
}

// TelemetryPoint is one immutable reading, either a raw sample or a
// time-bucket average (Agg "avg" with a Bucket label). Value arrives
// loosely typed; series construction coerces it and drops anything
// that is not a finite number.
type TelemetryPoint struct {
	DeviceID int64  `json:"device_id"`
	Code     string `json:"code"`
	TS       string `json:"ts"`
	Value    any    `json:"value"`
	Unit     string `json:"unit,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Agg      string `json:"agg,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Run is a named, time-bounded experiment grouping devices.
type Run struct {
	RunID int64  `json:"run_id"`
	Name  string `json:"name"`

	StartAt LocalTime `json:"start_at,omitzero"`
	EndAt   LocalTime `json:"end_at,omitzero"`

	Recipe   map[string]any `json:"recipe,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`

	Note string `json:"note,omitempty"`

	CreatedAt LocalTime `json:"created_at,omitzero"`
	UpdatedAt LocalTime `json:"updated_at,omitzero"`
}

// RunWindow binds one device to a run for a sub-interval. When
// FollowRun is set the effective range inherits the run's bounds; the
// backend reports the resolved range in the effective fields.
type RunWindow struct {
	WindowID int64 `json:"window_id"`
	RunID    int64 `json:"run_id"`
	DeviceID int64 `json:"device_id"`

	Group     string `json:"group,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	FollowRun bool   `json:"follow_run,omitempty"`

	StartAt LocalTime `json:"start_at,omitzero"`
	EndAt   LocalTime `json:"end_at,omitzero"`

	EffectiveStartAt LocalTime `json:"effective_start_at,omitzero"`
	EffectiveEndAt   LocalTime `json:"effective_end_at,omitzero"`

	Settings map[string]any `json:"settings,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`

	Note string `json:"note,omitempty"`
}

// Command status values. Transitions happen backend-side only and are
// observed by polling the history endpoint.
const (
	CommandStatusQueued = "queued"
	CommandStatusSent   = "sent"
	CommandStatusAcked  = "acked"
	CommandStatusFailed = "failed"
)

// DeviceCommand is an append-only record of one dispatch attempt.
type DeviceCommand struct {
	CommandID int64 `json:"command_id"`
	DeviceID  int64 `json:"device_id"`

	Status  string `json:"status"`
	Command string `json:"command,omitempty"`

	Payload map[string]any `json:"payload,omitempty"`
	Result  map[string]any `json:"result,omitempty"`

	CreatedAt LocalTime `json:"created_at,omitzero"`
	SentAt    LocalTime `json:"sent_at,omitzero"`
	AckedAt   LocalTime `json:"acked_at,omitzero"`
}
