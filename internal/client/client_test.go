package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := NewCredentialStore("dev", "devpass")
	return New(Config{BaseURL: srv.URL}, creds, nil), srv
}

func TestDevicesTree(t *testing.T) {
	var gotAuth, gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		require.Equal(t, "/devices/tree", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 1, "data": [
			{"device_id": 7, "code": "pile-1", "name": "Pile 1",
			 "last_seen_at": "2025-06-01 10:00:00",
			 "channels": [{"channel_id": 1, "device_id": 7, "code": "T1", "metric": "temp",
			               "latest": {"code": "T1", "ts": "2025-06-01 10:00:00", "value": 58.5}}]}
		]}`))
	}))

	tree, err := c.DevicesTree(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	assert.Equal(t, "Basic "+BasicToken("dev", "devpass"), gotAuth)
	assert.Equal(t, "with_latest=1", gotQuery)

	d := tree[0]
	assert.Equal(t, int64(7), d.DeviceID)
	assert.Equal(t, "2025-06-01 10:00:00", d.LastSeenAt)
	require.Len(t, d.Channels, 1)
	require.NotNil(t, d.Channels[0].Latest)
	assert.Equal(t, 58.5, *d.Channels[0].Latest.Value)
}

func TestBackendErrorBecomesAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "device not found"}`))
	}))

	_, err := c.DeviceChannels(context.Background(), 99)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "device not found", apiErr.Detail)
}

func TestUnauthorizedHookFires(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid credentials"}`))
	}))

	var fired atomic.Int32
	c.SetUnauthorizedHandler(func() { fired.Add(1) })

	_, err := c.Runs(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(1), fired.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
}

func TestSendCommandsRequiresNonEmptyList(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := c.SendCommands(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrNoCommands)
	assert.Equal(t, int32(0), calls.Load(), "validation must not reach the network")
}

func TestSendCommandsBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/devices/7/commands", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"command_id": 12, "device_id": 7, "status": "queued"}`))
	}))

	cmdRec, err := c.SendCommands(context.Background(), 7, []map[string]any{
		{"command": "set_fan", "value": 80},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), cmdRec.CommandID)
	assert.Equal(t, "queued", cmdRec.Status)
}
