package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

type upstream struct {
	mu      sync.Mutex
	hits    map[string]int
	handler http.HandlerFunc
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	u.mu.Unlock()
	u.handler(w, r)
}

func (u *upstream) total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.hits {
		n += c
	}
	return n
}

func newGateway(t *testing.T, handler http.HandlerFunc) (*gin.Engine, *upstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &upstream{hits: make(map[string]int), handler: handler}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := client.New(client.Config{BaseURL: srv.URL}, client.NewCredentialStore("dev", "dev"), logger)
	store := cache.NewStore(api, cache.New(time.Minute, logger), logger)

	router := gin.New()
	SetupRoutes(router, NewHandlers(store, logger), logger)
	return router, up
}

func do(router *gin.Engine, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestOverview(t *testing.T) {
	recent := core.FormatLocalTime(time.Now().Add(-2 * time.Minute))
	stale := core.FormatLocalTime(time.Now().Add(-3 * time.Hour))

	router, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/tree", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"count": 2, "data": [
			{"device_id": 1, "code": "pile-1", "last_seen_at": %q, "channels": [
				{"channel_id": 1, "device_id": 1, "code": "T1", "metric": "temp",
				 "latest": {"code": "T1", "ts": %q, "value": 82.0}},
				{"channel_id": 2, "device_id": 1, "code": "O2", "metric": "o2",
				 "latest": {"code": "O2", "ts": %q, "value": 19.5}}
			]},
			{"device_id": 2, "code": "pile-2", "last_seen_at": %q, "channels": []}
		]}`, recent, recent, recent, stale)
	})

	rec := do(router, http.MethodGet, "/api/v1/overview", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Count int              `json:"count"`
		Data  []DeviceOverview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 2, res.Count)

	hot := res.Data[0]
	assert.Equal(t, core.StateOnline, hot.State)
	assert.Equal(t, "green", hot.Badge.Color)
	assert.Equal(t, core.SevDanger, hot.Overall, "overheated temperature dominates")
	require.Len(t, hot.Readings, 4)
	assert.Equal(t, core.SevDanger, hot.Readings[0].Sev)
	assert.Equal(t, core.SevOK, hot.Readings[1].Sev)
	assert.Equal(t, core.SevNone, hot.Readings[2].Sev, "no CO2 channel means no alert")

	silent := res.Data[1]
	assert.Equal(t, core.StateOffline, silent.State)
	assert.Equal(t, core.SevNone, silent.Overall)
}

func TestDeviceSeries(t *testing.T) {
	router, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/3/telemetry", r.URL.Path)
		assert.Equal(t, []string{"T1", "T2"}, r.URL.Query()["channels"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 3, "data": [
			{"device_id": 3, "code": "T1", "ts": "2025-06-01 10:00:00", "value": 55.0},
			{"device_id": 3, "code": "T2", "ts": "2025-06-01 10:00:00", "value": 52.0},
			{"device_id": 3, "code": "T1", "ts": "2025-06-01 10:10:00", "value": "bad"}
		]}`))
	})

	rec := do(router, http.MethodGet, "/api/v1/devices/3/series?channels=T1&channels=T2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Series []core.Series `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Series, 2)
	assert.Equal(t, "T1", res.Series[0].Code)
	assert.Len(t, res.Series[0].Points, 1, "unparseable sample dropped")
	assert.Equal(t, "T2", res.Series[1].Code)
}

func TestDeviceLatest(t *testing.T) {
	router, up := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/3/latest", r.URL.Path)
		assert.Equal(t, "T1,O2_1", r.URL.Query().Get("channels"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 2, "data": [
			{"device_id": 3, "code": "T1", "ts": "2025-06-01 10:00:00", "value": 55.0},
			{"device_id": 3, "code": "O2_1", "ts": "2025-06-01 10:00:00", "value": 18.4}
		]}`))
	})

	rec := do(router, http.MethodGet, "/api/v1/devices/3/latest?channels=T1&channels=O2_1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), `"O2_1"`)

	// Repeated polls inside the TTL are served from cache.
	rec = do(router, http.MethodGet, "/api/v1/devices/3/latest?channels=T1&channels=O2_1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, up.total())
}

func TestDeviceSeriesInvalidBucket(t *testing.T) {
	router, up := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := do(router, http.MethodGet, "/api/v1/devices/3/series?bucket=2m", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid bucket")
	assert.Zero(t, up.total())
}

func TestDeviceSeriesInvalidID(t *testing.T) {
	router, up := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := do(router, http.MethodGet, "/api/v1/devices/abc/series", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, up.total())
}

func TestUnauthorizedPassesThrough(t *testing.T) {
	router, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid credentials"}`))
	})

	rec := do(router, http.MethodGet, "/api/v1/overview", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestSendCommandsEmptyList(t *testing.T) {
	router, up := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := do(router, http.MethodPost, "/api/v1/devices/3/commands", `{"commands": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, up.total(), "empty command list never reaches the backend")
}

func TestSendCommands(t *testing.T) {
	router, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/devices/3/commands", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"command_id": 9, "device_id": 3, "status": "queued"}`))
	})

	rec := do(router, http.MethodPost, "/api/v1/devices/3/commands",
		`{"commands": [{"command": "set_fan", "value": 80}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queued"`)
}
