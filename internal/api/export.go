// internal/api/export.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

// ExportDevice streams a device's raw CSV export through to the
// browser.
func (h *Handlers) ExportDevice(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := parseSeriesParams(c)
	if !ok {
		return
	}

	q := client.TelemetryQuery{Range: p.rng, Channels: p.channels, Bucket: p.bucket}
	urlPath := fmt.Sprintf("/devices/%d/export%s", deviceID, client.BuildQuery(q.Params()))
	fallback := core.ExportFilename("device", fmt.Sprint(deviceID), p.rng.From, p.rng.To, p.channels)

	h.streamCSV(c, urlPath, fallback)
}

// ExportRun streams a run's raw CSV export. Raw export has no local
// preconditions; bucket and channels are optional.
func (h *Handlers) ExportRun(c *gin.Context) {
	runID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := parseSeriesParams(c)
	if !ok {
		return
	}
	q := client.RunTelemetryQuery{
		Range:     p.rng,
		Channels:  p.channels,
		Bucket:    p.bucket,
		Group:     c.Query("group"),
		Treatment: c.Query("treatment"),
	}
	urlPath := fmt.Sprintf("/runs/%d/export%s", runID, client.BuildQuery(q.Params()))
	fallback := core.ExportFilename("run", fmt.Sprint(runID), p.rng.From, p.rng.To, p.channels)

	h.streamCSV(c, urlPath, fallback)
}

// ExportRunWide streams a run's pivoted CSV export. The bucket and
// channel-list requirements are validated here; a violation answers
// 400 without contacting the backend.
func (h *Handlers) ExportRunWide(c *gin.Context) {
	runID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := parseSeriesParams(c)
	if !ok {
		return
	}

	if err := client.ValidateWideExport(p.bucket, p.channels); err != nil {
		h.respondError(c, err, "wide export rejected")
		return
	}

	q := client.RunTelemetryQuery{
		Range:     p.rng,
		Channels:  p.channels,
		Bucket:    p.bucket,
		Group:     c.Query("group"),
		Treatment: c.Query("treatment"),
	}
	urlPath := fmt.Sprintf("/runs/%d/export_wide%s", runID, client.BuildQuery(q.Params()))
	fallback := core.ExportFilename("run", fmt.Sprintf("%d_wide", runID), p.rng.From, p.rng.To, p.channels)

	h.streamCSV(c, urlPath, fallback)
}

func (h *Handlers) streamCSV(c *gin.Context, urlPath, fallbackName string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fallbackName))

	filename, _, err := h.store.Client().Download(c.Request.Context(), urlPath, c.Writer)
	if err != nil {
		// An upstream failure mid-stream leaves a partial CSV body that
		// cannot be turned into a JSON error anymore; abort and let the
		// truncated response signal the failure.
		if c.Writer.Written() {
			h.logger.WithError(err).Error("export stream interrupted")
			c.Abort()
			return
		}
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "")
		h.respondError(c, err, "export failed")
		return
	}
	if filename != "" && filename != fallbackName {
		h.logger.WithField("filename", filename).Debug("backend suggested export name")
	}
	c.Status(http.StatusOK)
}
