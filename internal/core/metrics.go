package core

import "strings"

// Metric is the semantic kind of a channel, normalized from the
// free-form metric string stored on the backend.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricO2          Metric = "o2"
	MetricCO2         Metric = "co2"
	MetricMoisture    Metric = "moisture"
	MetricUnknown     Metric = "unknown"
)

// Metrics lists the known semantic metrics in display order.
var Metrics = []Metric{MetricTemperature, MetricO2, MetricCO2, MetricMoisture}

var metricAliases = map[string]Metric{
	"temp":           MetricTemperature,
	"temperature":    MetricTemperature,
	"t":              MetricTemperature,
	"t1":             MetricTemperature,
	"t2":             MetricTemperature,
	"t3":             MetricTemperature,
	"o2":             MetricO2,
	"oxygen":         MetricO2,
	"co2":            MetricCO2,
	"carbon_dioxide": MetricCO2,
	"carbondioxide":  MetricCO2,
	"mois":           MetricMoisture,
	"moisture":       MetricMoisture,
	"humidity":       MetricMoisture,
	"water":          MetricMoisture,
}

// NormalizeMetric maps a raw metric string to one of the five metric
// keys. Matching is case-insensitive after trimming; anything
// unrecognized, including the empty string, is MetricUnknown.
func NormalizeMetric(raw string) Metric {
	x := strings.ToLower(strings.TrimSpace(raw))
	if x == "" {
		return MetricUnknown
	}
	if m, ok := metricAliases[x]; ok {
		return m
	}
	return MetricUnknown
}

// MetricLabel returns the display label for a metric.
func MetricLabel(m Metric) string {
	switch m {
	case MetricTemperature:
		return "Temperature"
	case MetricO2:
		return "Oxygen"
	case MetricCO2:
		return "CO2"
	case MetricMoisture:
		return "Moisture"
	default:
		return "Unclassified"
	}
}
