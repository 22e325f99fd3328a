package core

// Severity is an alert tier derived from a sensor reading.
type Severity string

const (
	SevNone   Severity = "none"
	SevOK     Severity = "ok"
	SevWarn   Severity = "warn"
	SevDanger Severity = "danger"
)

// Assessment pairs a severity with a human-readable explanation.
type Assessment struct {
	Sev Severity `json:"sev"`
	Tip string   `json:"tip"`
}

// EvalTemperature scores a compost temperature reading in Celsius.
// Overheating escalates to danger; undercooling only warns, since a
// cold pile is slow rather than hazardous.
func EvalTemperature(v *float64) Assessment {
	if v == nil {
		return Assessment{Sev: SevNone, Tip: "no temperature data"}
	}
	switch {
	case *v >= 75:
		return Assessment{Sev: SevDanger, Tip: "temperature too high (>=75C)"}
	case *v >= 65:
		return Assessment{Sev: SevWarn, Tip: "temperature elevated (65-75C)"}
	case *v >= 50:
		return Assessment{Sev: SevOK, Tip: "temperature normal (50-65C)"}
	default:
		return Assessment{Sev: SevWarn, Tip: "temperature low (<50C)"}
	}
}

// EvalOxygen scores an oxygen reading in percent.
func EvalOxygen(v *float64) Assessment {
	if v == nil {
		return Assessment{Sev: SevNone, Tip: "no oxygen data"}
	}
	switch {
	case *v < 15:
		return Assessment{Sev: SevDanger, Tip: "oxygen too low (<15%)"}
	case *v < 18:
		return Assessment{Sev: SevWarn, Tip: "oxygen low (15-18%)"}
	case *v <= 21:
		return Assessment{Sev: SevOK, Tip: "oxygen normal (18-21%)"}
	default:
		return Assessment{Sev: SevWarn, Tip: "oxygen high (>21%)"}
	}
}

var sevRank = map[Severity]int{
	SevNone:   0,
	SevOK:     1,
	SevWarn:   2,
	SevDanger: 3,
}

var rankSev = []Severity{SevNone, SevOK, SevWarn, SevDanger}

// OverallSeverity combines two tiers into the device-level badge by
// taking the more severe one. Commutative.
func OverallSeverity(a, b Severity) Severity {
	ra, rb := sevRank[a], sevRank[b]
	if rb > ra {
		ra = rb
	}
	return rankSev[ra]
}

// SeverityColor maps a tier to its dashboard badge color.
func SeverityColor(s Severity) string {
	switch s {
	case SevDanger:
		return "red"
	case SevWarn:
		return "orange"
	case SevOK:
		return "green"
	default:
		return "default"
	}
}
