// internal/cache/keys.go
//
// Cache key constructors. The hierarchy makes prefix invalidation
// cover exactly the reads a mutation could have changed: dropping
// DeviceDetail(id) also drops that device's channels, latest,
// telemetry and command keys.
package cache

import "strconv"

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// DevicesAll is the root of every device-scoped key.
func DevicesAll() Key { return Key{"devices"} }

// DevicesTree keys the device tree, with/without embedded latest.
func DevicesTree(withLatest bool) Key {
	return append(DevicesAll(), "tree", strconv.FormatBool(withLatest))
}

// DeviceDetail keys one device and roots its sub-resources.
func DeviceDetail(deviceID int64) Key {
	return append(DevicesAll(), "detail", itoa(deviceID))
}

// DeviceChannels keys one device's channel list.
func DeviceChannels(deviceID int64) Key {
	return append(DeviceDetail(deviceID), "channels")
}

// DeviceLatest keys one device's latest values for a channel set.
func DeviceLatest(deviceID int64, channelsKey string) Key {
	return append(DeviceDetail(deviceID), "latest", channelsKey)
}

// DeviceTelemetry keys one telemetry query.
func DeviceTelemetry(deviceID int64, argsKey string) Key {
	return append(DeviceDetail(deviceID), "telemetry", argsKey)
}

// DeviceCommandsBase roots one device's command history keys.
func DeviceCommandsBase(deviceID int64) Key {
	return append(DeviceDetail(deviceID), "commands")
}

// DeviceCommands keys one command-history query.
func DeviceCommands(deviceID int64, argsKey string) Key {
	return append(DeviceCommandsBase(deviceID), argsKey)
}

// RunsAll is the root of every run-scoped key.
func RunsAll() Key { return Key{"runs"} }

// RunList keys the run list for a search query.
func RunList(q string) Key {
	return append(RunsAll(), "list", q)
}

// RunDetail keys one run and roots its sub-resources.
func RunDetail(runID int64) Key {
	return append(RunsAll(), "detail", itoa(runID))
}

// RunTelemetryBase roots one run's telemetry keys.
func RunTelemetryBase(runID int64) Key {
	return append(RunDetail(runID), "telemetry")
}

// RunTelemetry keys one run telemetry query.
func RunTelemetry(runID int64, argsKey string) Key {
	return append(RunTelemetryBase(runID), argsKey)
}

// RunWindowsBase roots one run's window keys.
func RunWindowsBase(runID int64) Key {
	return append(RunDetail(runID), "windows")
}

// RunWindows keys one window query.
func RunWindows(runID int64, group, treatment string) Key {
	return append(RunWindowsBase(runID), group, treatment)
}
