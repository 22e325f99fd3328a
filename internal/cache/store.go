// internal/cache/store.go
//
// Store is the data-fetching layer: each read declares its cache key
// and fetch function, each mutation declares the key prefixes it
// invalidates on success. The invalidation set of a mutation is a
// superset of every read key whose result it could have changed.
package cache

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

// Store wraps the API client with the query cache.
type Store struct {
	api    *client.Client
	cache  *Cache
	logger *logrus.Logger
}

// NewStore builds a store over api and cache.
func NewStore(api *client.Client, cache *Cache, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{api: api, cache: cache, logger: logger}
}

// Client exposes the underlying API client for uncached operations
// (exports stream straight through).
func (s *Store) Client() *client.Client {
	return s.api
}

// validID guards against issuing requests before a scope id is known.
func validID(id int64) bool {
	return id > 0
}

// --- Device reads ---

// DevicesTree returns the cached device tree.
func (s *Store) DevicesTree(ctx context.Context, withLatest bool) ([]core.DeviceTreeItem, error) {
	return Get(ctx, s.cache, DevicesTree(withLatest), func(ctx context.Context) ([]core.DeviceTreeItem, error) {
		return s.api.DevicesTree(ctx, withLatest)
	})
}

// DeviceChannels returns the cached channel list of a device.
func (s *Store) DeviceChannels(ctx context.Context, deviceID int64) ([]core.Channel, error) {
	if !validID(deviceID) {
		return nil, client.ErrScopeNotResolved
	}
	return Get(ctx, s.cache, DeviceChannels(deviceID), func(ctx context.Context) ([]core.Channel, error) {
		return s.api.DeviceChannels(ctx, deviceID)
	})
}

// DeviceLatest returns the cached latest readings of a device.
func (s *Store) DeviceLatest(ctx context.Context, deviceID int64, channels []string) ([]core.TelemetryPoint, error) {
	if !validID(deviceID) {
		return nil, client.ErrScopeNotResolved
	}
	key := DeviceLatest(deviceID, strings.Join(channels, ","))
	return Get(ctx, s.cache, key, func(ctx context.Context) ([]core.TelemetryPoint, error) {
		return s.api.DeviceLatest(ctx, deviceID, channels)
	})
}

// DeviceTelemetry returns a cached telemetry query result.
func (s *Store) DeviceTelemetry(ctx context.Context, deviceID int64, q client.TelemetryQuery) (*client.TelemetryResponse, error) {
	if !validID(deviceID) {
		return nil, client.ErrScopeNotResolved
	}
	key := DeviceTelemetry(deviceID, q.ArgsKey())
	return Get(ctx, s.cache, key, func(ctx context.Context) (*client.TelemetryResponse, error) {
		return s.api.DeviceTelemetry(ctx, deviceID, q)
	})
}

// DeviceCommands returns a cached command-history page.
func (s *Store) DeviceCommands(ctx context.Context, deviceID int64, limit int, status string) ([]core.DeviceCommand, error) {
	if !validID(deviceID) {
		return nil, client.ErrScopeNotResolved
	}
	key := DeviceCommands(deviceID, joinKey(limit, status))
	return Get(ctx, s.cache, key, func(ctx context.Context) ([]core.DeviceCommand, error) {
		return s.api.DeviceCommands(ctx, deviceID, limit, status)
	})
}

// --- Device mutations ---

// CreateDevice creates a device and invalidates every device read.
func (s *Store) CreateDevice(ctx context.Context, body client.DeviceBody) (*core.Device, error) {
	d, err := s.api.CreateDevice(ctx, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(DevicesAll())
	return d, nil
}

// UpdateDevice patches a device and invalidates the tree and that
// device's sub-resources.
func (s *Store) UpdateDevice(ctx context.Context, deviceID int64, body client.DeviceBody) (*core.Device, error) {
	d, err := s.api.UpdateDevice(ctx, deviceID, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(DevicesAll())
	return d, nil
}

// DeleteDevice removes a device and invalidates every device read.
func (s *Store) DeleteDevice(ctx context.Context, deviceID int64) error {
	if err := s.api.DeleteDevice(ctx, deviceID); err != nil {
		return err
	}
	s.cache.Invalidate(DevicesAll())
	return nil
}

// CreateChannel adds a channel; the tree embeds channels, so both the
// device list and the per-device channel list are stale afterwards.
func (s *Store) CreateChannel(ctx context.Context, deviceID int64, body client.ChannelBody) (*core.Channel, error) {
	ch, err := s.api.CreateChannel(ctx, deviceID, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(DevicesAll())
	s.cache.Invalidate(DeviceChannels(deviceID))
	return ch, nil
}

// UpdateChannel patches a channel.
func (s *Store) UpdateChannel(ctx context.Context, deviceID, channelID int64, body client.ChannelBody) (*core.Channel, error) {
	ch, err := s.api.UpdateChannel(ctx, deviceID, channelID, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(DevicesAll())
	s.cache.Invalidate(DeviceChannels(deviceID))
	return ch, nil
}

// DeleteChannel removes a channel.
func (s *Store) DeleteChannel(ctx context.Context, deviceID, channelID int64) error {
	if err := s.api.DeleteChannel(ctx, deviceID, channelID); err != nil {
		return err
	}
	s.cache.Invalidate(DevicesAll())
	s.cache.Invalidate(DeviceChannels(deviceID))
	return nil
}

// SendCommands dispatches commands and invalidates that device's
// command history so the next read sees the new record.
func (s *Store) SendCommands(ctx context.Context, deviceID int64, commands []map[string]any) (*core.DeviceCommand, error) {
	rec, err := s.api.SendCommands(ctx, deviceID, commands)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(DeviceCommandsBase(deviceID))
	return rec, nil
}

// --- Run reads ---

// Runs returns the cached run list for a search query.
func (s *Store) Runs(ctx context.Context, q string) ([]core.Run, error) {
	return Get(ctx, s.cache, RunList(q), func(ctx context.Context) ([]core.Run, error) {
		return s.api.Runs(ctx, q)
	})
}

// RunDetail returns a cached run.
func (s *Store) RunDetail(ctx context.Context, runID int64) (*core.Run, error) {
	if !validID(runID) {
		return nil, client.ErrScopeNotResolved
	}
	return Get(ctx, s.cache, RunDetail(runID), func(ctx context.Context) (*core.Run, error) {
		return s.api.RunDetail(ctx, runID)
	})
}

// RunWindows returns cached run windows.
func (s *Store) RunWindows(ctx context.Context, runID int64, group, treatment string) ([]core.RunWindow, error) {
	if !validID(runID) {
		return nil, client.ErrScopeNotResolved
	}
	key := RunWindows(runID, group, treatment)
	return Get(ctx, s.cache, key, func(ctx context.Context) ([]core.RunWindow, error) {
		return s.api.RunWindows(ctx, runID, group, treatment)
	})
}

// RunTelemetry returns a cached run telemetry query result.
func (s *Store) RunTelemetry(ctx context.Context, runID int64, q client.RunTelemetryQuery) (*client.TelemetryResponse, error) {
	if !validID(runID) {
		return nil, client.ErrScopeNotResolved
	}
	key := RunTelemetry(runID, q.ArgsKey())
	return Get(ctx, s.cache, key, func(ctx context.Context) (*client.TelemetryResponse, error) {
		return s.api.RunTelemetry(ctx, runID, q)
	})
}

// --- Run mutations ---

// CreateRun creates a run and invalidates every run read.
func (s *Store) CreateRun(ctx context.Context, body client.RunBody) (*core.Run, error) {
	r, err := s.api.CreateRun(ctx, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(RunsAll())
	return r, nil
}

// UpdateRun patches a run; its windows inherit the run bounds via
// follow_run, so they are invalidated too.
func (s *Store) UpdateRun(ctx context.Context, runID int64, body client.RunBody) (*core.Run, error) {
	r, err := s.api.UpdateRun(ctx, runID, body)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(RunsAll())
	return r, nil
}

// DeleteRun removes a run and invalidates every run read.
func (s *Store) DeleteRun(ctx context.Context, runID int64) error {
	if err := s.api.DeleteRun(ctx, runID); err != nil {
		return err
	}
	s.cache.Invalidate(RunsAll())
	return nil
}

// CreateRunWindow binds a device to a run and invalidates that run's
// windows and telemetry scope.
func (s *Store) CreateRunWindow(ctx context.Context, runID int64, body client.RunWindowBody) (*core.RunWindow, error) {
	w, err := s.api.CreateRunWindow(ctx, runID, body)
	if err != nil {
		return nil, err
	}
	s.invalidateRunScope(runID)
	return w, nil
}

// UpdateRunWindow patches a run window.
func (s *Store) UpdateRunWindow(ctx context.Context, runID, windowID int64, body client.RunWindowBody) (*core.RunWindow, error) {
	w, err := s.api.UpdateRunWindow(ctx, runID, windowID, body)
	if err != nil {
		return nil, err
	}
	s.invalidateRunScope(runID)
	return w, nil
}

// DeleteRunWindow removes a run window.
func (s *Store) DeleteRunWindow(ctx context.Context, runID, windowID int64) error {
	if err := s.api.DeleteRunWindow(ctx, runID, windowID); err != nil {
		return err
	}
	s.invalidateRunScope(runID)
	return nil
}

// Window membership determines which devices a run's telemetry covers,
// so window mutations stale the telemetry keys as well.
func (s *Store) invalidateRunScope(runID int64) {
	s.cache.Invalidate(RunWindowsBase(runID))
	s.cache.Invalidate(RunTelemetryBase(runID))
}

func joinKey(limit int, status string) string {
	return strings.Join([]string{itoa(int64(limit)), status}, "|")
}
