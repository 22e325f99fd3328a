package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bp(v bool) *bool { return &v }

func TestChannelByMetricPrefersActive(t *testing.T) {
	channels := []Channel{
		{Code: "T1", Metric: "temp", IsActive: bp(false)},
		{Code: "T2", Metric: "temperature"},
		{Code: "O2", Metric: "o2"},
	}

	ch := ChannelByMetric(channels, MetricTemperature)
	require.NotNil(t, ch)
	assert.Equal(t, "T2", ch.Code)

	// Only an inactive match exists: fall back to it.
	ch = ChannelByMetric(channels[:1], MetricTemperature)
	require.NotNil(t, ch)
	assert.Equal(t, "T1", ch.Code)

	assert.Nil(t, ChannelByMetric(channels, MetricCO2))
}

func TestCodesByMetrics(t *testing.T) {
	channels := []Channel{
		{Code: "O2", Metric: "oxygen"},
		{Code: "T1", Metric: "temp"},
	}
	codes := CodesByMetrics(channels, []Metric{MetricTemperature, MetricO2, MetricCO2})
	assert.Equal(t, []string{"T1", "O2"}, codes)
}

func TestCodesForMetricDedupAcrossDevices(t *testing.T) {
	devices := []DeviceTreeItem{
		{Channels: []Channel{
			{Code: "T1", Metric: "temp"},
			{Code: "O2", Metric: "o2"},
		}},
		{Channels: []Channel{
			{Code: "T1", Metric: "temp"},
			{Code: "T2", Metric: "temp"},
		}},
	}
	codes := CodesForMetric(devices, MetricTemperature)
	assert.Equal(t, []string{"T1", "T2"}, codes)
}

func TestLatestByMetric(t *testing.T) {
	d := &DeviceTreeItem{Channels: []Channel{
		{Code: "T1", Metric: "temp", Latest: &ChannelLatest{Code: "T1", Value: fp(58)}},
		{Code: "O2", Metric: "o2"},
	}}

	latest := LatestByMetric(d, MetricTemperature)
	require.NotNil(t, latest)
	assert.Equal(t, 58.0, *latest.Value)

	// Channel exists but carries no embedded reading.
	assert.Nil(t, LatestByMetric(d, MetricO2))
	// No channel for the metric at all.
	assert.Nil(t, LatestByMetric(d, MetricCO2))
}
