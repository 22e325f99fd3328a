// internal/client/devices.go
package client

import (
	"context"
	"fmt"
	"strings"

	"example.com/compost/console/internal/core"
)

// DeviceBody is the create/update payload for a device. Pointer fields
// distinguish "leave unchanged" from "set to zero value" on PATCH.
type DeviceBody struct {
	Code          string         `json:"code,omitempty"`
	Name          string         `json:"name,omitempty"`
	PostTopic     *string        `json:"post_topic,omitempty"`
	ResponseTopic *string        `json:"response_topic,omitempty"`
	Note          *string        `json:"note,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	IsActive      *bool          `json:"is_active,omitempty"`
}

// ChannelBody is the create/update payload for a channel.
type ChannelBody struct {
	Code        string         `json:"code,omitempty"`
	Name        *string        `json:"name,omitempty"`
	Unit        *string        `json:"unit,omitempty"`
	Metric      *string        `json:"metric,omitempty"`
	Role        *string        `json:"role,omitempty"`
	DisplayName *string        `json:"display_name,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
}

// DevicesTree lists every device with its channels. withLatest embeds
// each channel's most recent reading.
func (c *Client) DevicesTree(ctx context.Context, withLatest bool) ([]core.DeviceTreeItem, error) {
	latest := 0
	if withLatest {
		latest = 1
	}
	qs := BuildQuery([]QueryParam{{Key: "with_latest", Value: latest}})

	var out ListResp[core.DeviceTreeItem]
	resp, err := c.r(ctx).SetResult(&out).Get("/devices/tree" + qs)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateDevice registers a new device.
func (c *Client) CreateDevice(ctx context.Context, body DeviceBody) (*core.Device, error) {
	var out core.Device
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).Post("/devices")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDevice patches a device.
func (c *Client) UpdateDevice(ctx context.Context, deviceID int64, body DeviceBody) (*core.Device, error) {
	var out core.Device
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Patch(fmt.Sprintf("/devices/%d", deviceID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, deviceID int64) error {
	resp, err := c.r(ctx).Delete(fmt.Sprintf("/devices/%d", deviceID))
	return c.check(resp, err)
}

// DeviceChannels lists a device's channels.
func (c *Client) DeviceChannels(ctx context.Context, deviceID int64) ([]core.Channel, error) {
	var out ListResp[core.Channel]
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/devices/%d/channels", deviceID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateChannel adds a channel to a device.
func (c *Client) CreateChannel(ctx context.Context, deviceID int64, body ChannelBody) (*core.Channel, error) {
	var out core.Channel
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Post(fmt.Sprintf("/devices/%d/channels", deviceID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateChannel patches a channel.
func (c *Client) UpdateChannel(ctx context.Context, deviceID, channelID int64, body ChannelBody) (*core.Channel, error) {
	var out core.Channel
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Patch(fmt.Sprintf("/devices/%d/channels/%d", deviceID, channelID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChannel removes a channel.
func (c *Client) DeleteChannel(ctx context.Context, deviceID, channelID int64) error {
	resp, err := c.r(ctx).
		Delete(fmt.Sprintf("/devices/%d/channels/%d", deviceID, channelID))
	return c.check(resp, err)
}

// DeviceLatest fetches the most recent reading per channel. An empty
// channels list means all channels.
func (c *Client) DeviceLatest(ctx context.Context, deviceID int64, channels []string) ([]core.TelemetryPoint, error) {
	var qs string
	if len(channels) > 0 {
		qs = BuildQuery([]QueryParam{{Key: "channels", Value: strings.Join(channels, ",")}})
	}

	var out ListResp[core.TelemetryPoint]
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/devices/%d/latest%s", deviceID, qs))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SendCommands dispatches structured commands to a device. The backend
// requires a non-empty list; this is enforced locally with zero
// network calls.
func (c *Client) SendCommands(ctx context.Context, deviceID int64, commands []map[string]any) (*core.DeviceCommand, error) {
	if len(commands) == 0 {
		return nil, ErrNoCommands
	}
	body := map[string]any{"commands": commands}

	var out core.DeviceCommand
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Post(fmt.Sprintf("/devices/%d/commands", deviceID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceCommands lists a device's dispatch history, newest first.
// status filters by command status when non-empty.
func (c *Client) DeviceCommands(ctx context.Context, deviceID int64, limit int, status string) ([]core.DeviceCommand, error) {
	qs := BuildQuery([]QueryParam{
		{Key: "limit", Value: limit},
		{Key: "status", Value: status},
	})

	var out ListResp[core.DeviceCommand]
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/devices/%d/commands%s", deviceID, qs))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}
