// internal/client/telemetry.go
package client

import (
	"context"
	"fmt"

	"example.com/compost/console/internal/core"
)

// TelemetryQuery selects device-scoped telemetry. Empty range fields
// mean the backend default; empty Bucket means raw points.
type TelemetryQuery struct {
	Range    core.TimeRange
	Channels []string
	Bucket   string
}

func (q TelemetryQuery) Params() []QueryParam {
	var channels any
	if len(q.Channels) > 0 {
		channels = q.Channels
	}
	return []QueryParam{
		{Key: "from", Value: q.Range.From},
		{Key: "to", Value: q.Range.To},
		{Key: "channels", Value: channels},
		{Key: "bucket", Value: q.Bucket},
	}
}

// ArgsKey serializes the query arguments for cache keying. Every field
// that affects the response is included.
func (q TelemetryQuery) ArgsKey() string {
	return joinArgs(q.Range.From, q.Range.To, q.Channels, q.Bucket)
}

// TelemetryResponse is the envelope of a telemetry query.
type TelemetryResponse struct {
	DeviceID int64  `json:"device_id,omitempty"`
	RunID    int64  `json:"run_id,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Bucket   string `json:"bucket,omitempty"`

	Count int                   `json:"count"`
	Data  []core.TelemetryPoint `json:"data"`

	// Run scope extras.
	Windows          []core.RunWindow `json:"windows,omitempty"`
	MatchedDeviceIDs []int64          `json:"matched_device_ids,omitempty"`
	Note             string           `json:"note,omitempty"`
}

// DeviceTelemetry fetches points for one device. An empty response is
// a valid "no data for this selection" state, not an error.
func (c *Client) DeviceTelemetry(ctx context.Context, deviceID int64, q TelemetryQuery) (*TelemetryResponse, error) {
	qs := BuildQuery(q.Params())

	var out TelemetryResponse
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/devices/%d/telemetry%s", deviceID, qs))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunTelemetryQuery selects run-scoped telemetry, additionally
// filtered by window group/treatment labels.
type RunTelemetryQuery struct {
	Range     core.TimeRange
	Channels  []string
	Bucket    string
	Group     string
	Treatment string
}

func (q RunTelemetryQuery) Params() []QueryParam {
	var channels any
	if len(q.Channels) > 0 {
		channels = q.Channels
	}
	return []QueryParam{
		{Key: "from", Value: q.Range.From},
		{Key: "to", Value: q.Range.To},
		{Key: "channels", Value: channels},
		{Key: "bucket", Value: q.Bucket},
		{Key: "group", Value: q.Group},
		{Key: "treatment", Value: q.Treatment},
	}
}

// ArgsKey serializes the query arguments for cache keying.
func (q RunTelemetryQuery) ArgsKey() string {
	return joinArgs(q.Range.From, q.Range.To, q.Channels, q.Bucket, q.Group, q.Treatment)
}

// RunTelemetry fetches points across a run's windows. The backend
// scopes each window to its (device, effective range) pair.
func (c *Client) RunTelemetry(ctx context.Context, runID int64, q RunTelemetryQuery) (*TelemetryResponse, error) {
	qs := BuildQuery(q.Params())

	var out TelemetryResponse
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/runs/%d/telemetry%s", runID, qs))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
