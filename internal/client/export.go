// internal/client/export.go
//
// CSV export retrieval. The backend streams the CSV body; the client
// copies it without buffering the whole file. The wide (pivoted)
// export has a client-side precondition mirroring the backend
// contract: it needs a bucket and an explicit channel list, and an
// unmet precondition makes zero network calls.
package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var contentDispositionName = regexp.MustCompile(`(?i)filename\*?=(?:UTF-8'')?"?([^";\n]+)`)

// inferFilename extracts the attachment name from a Content-
// Disposition header, falling back when absent or unparseable.
func inferFilename(contentDisposition, fallback string) string {
	if contentDisposition == "" {
		return fallback
	}
	m := contentDispositionName.FindStringSubmatch(contentDisposition)
	if len(m) < 2 || m[1] == "" {
		return fallback
	}
	name := strings.ReplaceAll(m[1], `"`, "")
	if decoded, err := url.QueryUnescape(name); err == nil {
		return decoded
	}
	return name
}

// Download streams the body of urlPath into w. Returns the filename
// suggested by the backend ("" when it suggests none) and the content
// type. Non-2xx responses become *APIError without writing to w.
func (c *Client) Download(ctx context.Context, urlPath string, w io.Writer) (filename, contentType string, err error) {
	resp, err := c.r(ctx).SetDoNotParseResponse(true).Get(urlPath)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() == 401 && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return "", "", parseAPIError(resp.StatusCode(), raw)
	}

	if _, err := io.Copy(w, body); err != nil {
		return "", "", fmt.Errorf("download failed: %w", err)
	}
	return inferFilename(resp.Header().Get("Content-Disposition"), ""),
		resp.Header().Get("Content-Type"), nil
}

// DownloadFile saves urlPath to destPath via a temporary file renamed
// into place, so a failed download never leaves a partial file behind.
// The failure itself propagates to the caller.
func (c *Client) DownloadFile(ctx context.Context, urlPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, _, err := c.Download(ctx, urlPath, tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// ExportDevice downloads a device's raw CSV export to destPath. An
// empty bucket means unaggregated rows; both bucket and channels are
// optional here.
func (c *Client) ExportDevice(ctx context.Context, deviceID int64, q TelemetryQuery, destPath string) error {
	qs := BuildQuery(q.Params())
	return c.DownloadFile(ctx, fmt.Sprintf("/devices/%d/export%s", deviceID, qs), destPath)
}

// ExportRun downloads a run's raw CSV export to destPath.
func (c *Client) ExportRun(ctx context.Context, runID int64, q RunTelemetryQuery, destPath string) error {
	qs := BuildQuery(q.Params())
	return c.DownloadFile(ctx, fmt.Sprintf("/runs/%d/export%s", runID, qs), destPath)
}

// ExportRunWide downloads a run's pivoted (one column per channel)
// CSV export. Requires a bucket and a non-empty channel list; a
// violation is reported locally before any request is made.
func (c *Client) ExportRunWide(ctx context.Context, runID int64, q RunTelemetryQuery, destPath string) error {
	if err := ValidateWideExport(q.Bucket, q.Channels); err != nil {
		return err
	}
	qs := BuildQuery(q.Params())
	return c.DownloadFile(ctx, fmt.Sprintf("/runs/%d/export_wide%s", runID, qs), destPath)
}

// ValidateWideExport checks the wide-export precondition.
func ValidateWideExport(bucket string, channels []string) error {
	if strings.TrimSpace(bucket) == "" {
		return ErrWideNeedsBucket
	}
	if len(channels) == 0 {
		return ErrWideNeedsCodes
	}
	return nil
}
