// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

// Handlers holds the gateway's HTTP handlers.
type Handlers struct {
	store  *cache.Store
	logger *logrus.Logger
}

// NewHandlers creates the handler set over the data-fetching store.
func NewHandlers(store *cache.Store, logger *logrus.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// HealthCheck returns service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "compost-console-gateway",
	})
}

// respondError converts a failure into the error body the browser
// expects. Upstream 401 passes through unchanged so the frontend can
// route to its login view; local validation failures are 400 and make
// it here without any upstream call having happened.
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.Is(err, client.ErrScopeNotResolved),
		errors.Is(err, client.ErrNoCommands),
		errors.Is(err, client.ErrWideNeedsBucket),
		errors.Is(err, client.ErrWideNeedsCodes):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"detail": client.ErrorMessage(err, fallback)})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + name})
		return 0, false
	}
	return id, true
}

// MetricReading is one metric's latest value with its assessment.
type MetricReading struct {
	Metric core.Metric   `json:"metric"`
	Code   string        `json:"code,omitempty"`
	TS     string        `json:"ts,omitempty"`
	Value  *float64      `json:"value,omitempty"`
	Unit   string        `json:"unit,omitempty"`
	Sev    core.Severity `json:"sev"`
	Tip    string        `json:"tip,omitempty"`
}

// DeviceOverview is one row of the dashboard device table.
type DeviceOverview struct {
	Device   core.Device      `json:"device"`
	Channels []core.Channel   `json:"channels"`
	State    core.OnlineState `json:"state"`
	Badge    core.StateBadge  `json:"badge"`
	Readings []MetricReading  `json:"readings"`
	Overall  core.Severity    `json:"overall"`
}

// Overview returns every device with liveness state and severity
// badges derived from the embedded latest readings.
func (h *Handlers) Overview(c *gin.Context) {
	tree, err := h.store.DevicesTree(c.Request.Context(), true)
	if err != nil {
		h.respondError(c, err, "failed to load devices")
		return
	}

	now := time.Now()
	rows := make([]DeviceOverview, 0, len(tree))
	for i := range tree {
		rows = append(rows, buildOverview(&tree[i], now))
	}

	c.JSON(http.StatusOK, gin.H{"count": len(rows), "data": rows})
}

func buildOverview(d *core.DeviceTreeItem, now time.Time) DeviceOverview {
	state := core.OnlineStateAt(d.LastSeenAt, now)

	row := DeviceOverview{
		Device:   d.Device,
		Channels: d.Channels,
		State:    state,
		Badge:    core.OnlineBadge(state),
		Overall:  core.SevNone,
	}

	for _, m := range core.Metrics {
		latest := core.LatestByMetric(d, m)
		reading := MetricReading{Metric: m, Sev: core.SevNone}
		if latest != nil {
			reading.Code = latest.Code
			reading.TS = latest.TS
			reading.Value = latest.Value
			reading.Unit = latest.Unit
		}
		switch m {
		case core.MetricTemperature:
			a := core.EvalTemperature(reading.Value)
			reading.Sev, reading.Tip = a.Sev, a.Tip
			row.Overall = core.OverallSeverity(row.Overall, a.Sev)
		case core.MetricO2:
			a := core.EvalOxygen(reading.Value)
			reading.Sev, reading.Tip = a.Sev, a.Tip
			row.Overall = core.OverallSeverity(row.Overall, a.Sev)
		}
		row.Readings = append(row.Readings, reading)
	}
	return row
}

// seriesParams are the shared query parameters of the series
// endpoints.
type seriesParams struct {
	metric   core.Metric
	channels []string
	rng      core.TimeRange
	bucket   string
}

func parseSeriesParams(c *gin.Context) (seriesParams, bool) {
	p := seriesParams{
		metric:   core.NormalizeMetric(c.Query("metric")),
		channels: c.QueryArray("channels"),
		rng:      core.TimeRange{From: c.Query("from"), To: c.Query("to")},
		bucket:   c.Query("bucket"),
	}
	if !core.ValidBucket(p.bucket) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid bucket, expected 1m, 10m or 1h"})
		return p, false
	}
	return p, true
}

// DeviceSeries returns chart series for one device: explicit channel
// codes when given, else the codes matching the requested metric.
func (h *Handlers) DeviceSeries(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := parseSeriesParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	codes := p.channels
	if len(codes) == 0 {
		channels, err := h.store.DeviceChannels(ctx, deviceID)
		if err != nil {
			h.respondError(c, err, "failed to load channels")
			return
		}
		codes = core.CodesForMetric([]core.DeviceTreeItem{{Channels: channels}}, p.metric)
	}

	res, err := h.store.DeviceTelemetry(ctx, deviceID, client.TelemetryQuery{
		Range:    p.rng,
		Channels: codes,
		Bucket:   p.bucket,
	})
	if err != nil {
		h.respondError(c, err, "failed to load telemetry")
		return
	}

	// No points for the selection is a displayable state, not an error.
	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"from":      res.From,
		"to":        res.To,
		"bucket":    res.Bucket,
		"count":     res.Count,
		"series":    core.BuildSeries(res.Data),
	})
}

// DeviceLatest returns the newest reading per channel for one device.
// The browser polls this endpoint to keep its device view fresh.
func (h *Handlers) DeviceLatest(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	points, err := h.store.DeviceLatest(c.Request.Context(), deviceID, c.QueryArray("channels"))
	if err != nil {
		h.respondError(c, err, "failed to load latest readings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(points), "data": points})
}

// RunSeries returns chart series for one run, scoped by its windows
// and filtered by group/treatment labels.
func (h *Handlers) RunSeries(c *gin.Context) {
	runID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := parseSeriesParams(c)
	if !ok {
		return
	}
	group := c.Query("group")
	treatment := c.Query("treatment")
	ctx := c.Request.Context()

	codes := p.channels
	if len(codes) == 0 {
		var err error
		codes, err = h.runCodesForMetric(c, runID, group, treatment, p.metric)
		if err != nil {
			return // response already written
		}
	}

	res, err := h.store.RunTelemetry(ctx, runID, client.RunTelemetryQuery{
		Range:     p.rng,
		Channels:  codes,
		Bucket:    p.bucket,
		Group:     group,
		Treatment: treatment,
	})
	if err != nil {
		h.respondError(c, err, "failed to load run telemetry")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":             runID,
		"from":               res.From,
		"to":                 res.To,
		"bucket":             res.Bucket,
		"count":              res.Count,
		"matched_device_ids": res.MatchedDeviceIDs,
		"note":               res.Note,
		"series":             core.BuildSeries(res.Data),
	})
}

// runCodesForMetric derives the channel codes in a run's telemetry
// scope for a metric: the union of matching codes across the devices
// bound by its windows.
func (h *Handlers) runCodesForMetric(c *gin.Context, runID int64, group, treatment string, metric core.Metric) ([]string, error) {
	ctx := c.Request.Context()

	windows, err := h.store.RunWindows(ctx, runID, group, treatment)
	if err != nil {
		h.respondError(c, err, "failed to load run windows")
		return nil, err
	}
	tree, err := h.store.DevicesTree(ctx, false)
	if err != nil {
		h.respondError(c, err, "failed to load devices")
		return nil, err
	}

	inScope := make(map[int64]bool, len(windows))
	for _, w := range windows {
		inScope[w.DeviceID] = true
	}
	var scoped []core.DeviceTreeItem
	for _, d := range tree {
		if inScope[d.DeviceID] {
			scoped = append(scoped, d)
		}
	}
	return core.CodesForMetric(scoped, metric), nil
}

// DeviceCommands returns a device's dispatch history.
func (h *Handlers) DeviceCommands(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.store.DeviceCommands(c.Request.Context(), deviceID, limit, c.Query("status"))
	if err != nil {
		h.respondError(c, err, "failed to load command history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "data": records})
}

// SendCommands dispatches structured commands to a device.
func (h *Handlers) SendCommands(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Commands []map[string]any `json:"commands"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request format"})
		return
	}

	rec, err := h.store.SendCommands(c.Request.Context(), deviceID, body.Commands)
	if err != nil {
		h.respondError(c, err, "failed to send commands")
		return
	}
	c.JSON(http.StatusCreated, rec)
}
