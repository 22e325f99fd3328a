package core

// ChannelByMetric returns the first channel of a device whose
// normalized metric matches, preferring active channels. Nil when no
// channel matches.
func ChannelByMetric(channels []Channel, metric Metric) *Channel {
	var fallback *Channel
	for i := range channels {
		c := &channels[i]
		if NormalizeMetric(c.Metric) != metric {
			continue
		}
		if c.Active() {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}

// CodesByMetrics resolves one channel code per requested metric for a
// single device, in metric order. Metrics without a matching channel
// are skipped.
func CodesByMetrics(channels []Channel, metrics []Metric) []string {
	var out []string
	for _, m := range metrics {
		if ch := ChannelByMetric(channels, m); ch != nil && ch.Code != "" {
			out = append(out, ch.Code)
		}
	}
	return out
}

// CodesForMetric collects the distinct channel codes matching a metric
// across a set of devices, preserving first-seen order. This is how a
// run's telemetry scope is derived from its window devices.
func CodesForMetric(devices []DeviceTreeItem, metric Metric) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range devices {
		for _, ch := range devices[i].Channels {
			if ch.Code == "" || NormalizeMetric(ch.Metric) != metric {
				continue
			}
			if _, ok := seen[ch.Code]; ok {
				continue
			}
			seen[ch.Code] = struct{}{}
			out = append(out, ch.Code)
		}
	}
	return out
}

// LatestByMetric finds the most recent embedded reading for a metric
// on a device tree item, via the metric's preferred channel.
func LatestByMetric(d *DeviceTreeItem, metric Metric) *ChannelLatest {
	ch := ChannelByMetric(d.Channels, metric)
	if ch == nil {
		return nil
	}
	return ch.Latest
}
