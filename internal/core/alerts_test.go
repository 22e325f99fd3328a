package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestEvalTemperature(t *testing.T) {
	tests := []struct {
		name string
		v    *float64
		want Severity
	}{
		{"missing", nil, SevNone},
		{"cold pile", fp(20), SevWarn},
		{"just below normal", fp(49.9), SevWarn},
		{"lower normal bound", fp(50), SevOK},
		{"mid normal", fp(60), SevOK},
		{"elevated bound", fp(65), SevWarn},
		{"elevated", fp(70), SevWarn},
		{"danger bound", fp(75), SevDanger},
		{"overheating", fp(82), SevDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := EvalTemperature(tt.v)
			assert.Equal(t, tt.want, a.Sev)
			assert.NotEmpty(t, a.Tip)
		})
	}
}

func TestEvalOxygen(t *testing.T) {
	tests := []struct {
		name string
		v    *float64
		want Severity
	}{
		{"missing", nil, SevNone},
		{"anaerobic", fp(8), SevDanger},
		{"just below low bound", fp(14.9), SevDanger},
		{"low bound", fp(15), SevWarn},
		{"low", fp(17), SevWarn},
		{"normal bound", fp(18), SevOK},
		{"ambient", fp(21), SevOK},
		{"above ambient", fp(21.5), SevWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := EvalOxygen(tt.v)
			assert.Equal(t, tt.want, a.Sev)
			assert.NotEmpty(t, a.Tip)
		})
	}
}

func TestOverallSeverity(t *testing.T) {
	assert.Equal(t, SevDanger, OverallSeverity(SevWarn, SevDanger))
	assert.Equal(t, SevWarn, OverallSeverity(SevOK, SevWarn))
	assert.Equal(t, SevOK, OverallSeverity(SevNone, SevOK))
	assert.Equal(t, SevNone, OverallSeverity(SevNone, SevNone))

	// Order of the pair never matters.
	all := []Severity{SevNone, SevOK, SevWarn, SevDanger}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, OverallSeverity(a, b), OverallSeverity(b, a))
		}
	}
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "red", SeverityColor(SevDanger))
	assert.Equal(t, "orange", SeverityColor(SevWarn))
	assert.Equal(t, "green", SeverityColor(SevOK))
	assert.Equal(t, "default", SeverityColor(SevNone))
}
