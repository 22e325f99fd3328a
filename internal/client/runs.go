// internal/client/runs.go
package client

import (
	"context"
	"fmt"

	"example.com/compost/console/internal/core"
)

// RunBody is the create/update payload for a run.
type RunBody struct {
	Name     string         `json:"name,omitempty"`
	StartAt  string         `json:"start_at,omitempty"`
	EndAt    *string        `json:"end_at,omitempty"`
	Note     *string        `json:"note,omitempty"`
	Recipe   map[string]any `json:"recipe,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// RunWindowBody is the create/update payload for a run window.
type RunWindowBody struct {
	DeviceID  int64          `json:"device_id,omitempty"`
	Group     *string        `json:"group,omitempty"`
	Treatment *string        `json:"treatment,omitempty"`
	FollowRun *bool          `json:"follow_run,omitempty"`
	StartAt   *string        `json:"start_at,omitempty"`
	EndAt     *string        `json:"end_at,omitempty"`
	Note      *string        `json:"note,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Runs lists runs, optionally filtered by a free-text query.
func (c *Client) Runs(ctx context.Context, q string) ([]core.Run, error) {
	qs := BuildQuery([]QueryParam{{Key: "q", Value: q}})

	var out ListResp[core.Run]
	resp, err := c.r(ctx).SetResult(&out).Get("/runs" + qs)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RunDetail fetches one run.
func (c *Client) RunDetail(ctx context.Context, runID int64) (*core.Run, error) {
	var out core.Run
	resp, err := c.r(ctx).SetResult(&out).Get(fmt.Sprintf("/runs/%d", runID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRun creates a run.
func (c *Client) CreateRun(ctx context.Context, body RunBody) (*core.Run, error) {
	var out core.Run
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).Post("/runs")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRun patches a run.
func (c *Client) UpdateRun(ctx context.Context, runID int64, body RunBody) (*core.Run, error) {
	var out core.Run
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Patch(fmt.Sprintf("/runs/%d", runID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRun removes a run.
func (c *Client) DeleteRun(ctx context.Context, runID int64) error {
	resp, err := c.r(ctx).Delete(fmt.Sprintf("/runs/%d", runID))
	return c.check(resp, err)
}

// RunWindows lists a run's device windows, optionally filtered by
// group/treatment labels.
func (c *Client) RunWindows(ctx context.Context, runID int64, group, treatment string) ([]core.RunWindow, error) {
	qs := BuildQuery([]QueryParam{
		{Key: "group", Value: group},
		{Key: "treatment", Value: treatment},
	})

	var out ListResp[core.RunWindow]
	resp, err := c.r(ctx).SetResult(&out).
		Get(fmt.Sprintf("/runs/%d/windows%s", runID, qs))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateRunWindow binds a device to a run.
func (c *Client) CreateRunWindow(ctx context.Context, runID int64, body RunWindowBody) (*core.RunWindow, error) {
	var out core.RunWindow
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Post(fmt.Sprintf("/runs/%d/windows", runID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRunWindow patches a run window.
func (c *Client) UpdateRunWindow(ctx context.Context, runID, windowID int64, body RunWindowBody) (*core.RunWindow, error) {
	var out core.RunWindow
	resp, err := c.r(ctx).SetBody(body).SetResult(&out).
		Patch(fmt.Sprintf("/runs/%d/windows/%d", runID, windowID))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRunWindow removes a run window.
func (c *Client) DeleteRunWindow(ctx context.Context, runID, windowID int64) error {
	resp, err := c.r(ctx).Delete(fmt.Sprintf("/runs/%d/windows/%d", runID, windowID))
	return c.check(resp, err)
}
