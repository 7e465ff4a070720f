// Package risk computes the composite risk score of a package from its
// vulnerabilities and health record.
//
// The score blends four sub-scores, each in [1, 10]:
//
//	vulnerability  0.40  severity-weighted vulnerability count
//	maintenance    0.20  maintenance status
//	staleness      0.25  days since the last update
//	stagnation     0.15  8 when a dormancy-then-release was detected
//
// and is rounded half-up to one decimal. Lower is better.
package risk

import (
	"math"

	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Flags attached to a score.
const (
	FlagCriticalCVE      = "critical-cve"
	FlagHighCVE          = "high-cve"
	FlagAbandoned        = "abandoned"
	FlagStagnationAlert  = "stagnation-alert"
	FlagNoMaintainerInfo = "no-maintainer-info"
)

const (
	weightVulnerability = 0.4
	weightMaintenance   = 0.2
	weightStaleness     = 0.25
	weightStagnation    = 0.15

	// Neutral is the sub-score used when nothing is known.
	Neutral = 5.0
)

var severityWeights = map[vuln.Severity]float64{
	vuln.SeverityCritical: 10,
	vuln.SeverityHigh:     7,
	vuln.SeverityMedium:   4,
	vuln.SeverityLow:      2,
	vuln.SeverityUnknown:  3,
}

// Components are the four sub-scores.
type Components struct {
	Vulnerability float64 `json:"vulnerability"`
	Maintenance   float64 `json:"maintenance"`
	Staleness     float64 `json:"staleness"`
	Stagnation    float64 `json:"stagnation"`
}

// Score is the risk assessment of one package.
type Score struct {
	Numeric      float64    `json:"numeric"`
	Grade        string     `json:"grade"`
	TrafficLight string     `json:"trafficLight"`
	Components   Components `json:"components"`
	Flags        []string   `json:"flags"`
}

// Compute scores a package. h may be nil.
func Compute(vulns []vuln.Vulnerability, h *health.Record) Score {
	c := Components{
		Vulnerability: vulnerabilityScore(vulns),
		Maintenance:   maintenanceScore(h),
		Staleness:     stalenessScore(h),
		Stagnation:    stagnationScore(h),
	}
	numeric := Round(c.Vulnerability*weightVulnerability +
		c.Maintenance*weightMaintenance +
		c.Staleness*weightStaleness +
		c.Stagnation*weightStagnation)
	numeric = math.Min(10, math.Max(1, numeric))

	return Score{
		Numeric:      numeric,
		Grade:        Grade(numeric),
		TrafficLight: TrafficLight(numeric),
		Components:   c,
		Flags:        flags(vulns, h),
	}
}

// Round rounds half-up to one decimal.
func Round(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// Grade maps a score to a letter: A ≤2, B ≤4, C ≤6, D ≤8, F above.
func Grade(score float64) string {
	switch {
	case score <= 2:
		return "A"
	case score <= 4:
		return "B"
	case score <= 6:
		return "C"
	case score <= 8:
		return "D"
	default:
		return "F"
	}
}

// TrafficLight maps a score to green (≤3), yellow (≤6) or red.
func TrafficLight(score float64) string {
	switch {
	case score <= 3:
		return "green"
	case score <= 6:
		return "yellow"
	default:
		return "red"
	}
}

func vulnerabilityScore(vulns []vuln.Vulnerability) float64 {
	if len(vulns) == 0 {
		return 1
	}
	var total float64
	for _, v := range vulns {
		w, ok := severityWeights[v.Severity]
		if !ok {
			w = severityWeights[vuln.SeverityUnknown]
		}
		total += w
	}
	return math.Min(10, 1+total/2)
}

func maintenanceScore(h *health.Record) float64 {
	if h == nil {
		return Neutral
	}
	switch h.MaintenanceStatus {
	case health.StatusActive:
		return 1
	case health.StatusMinimal:
		return 4
	case health.StatusAbandoned:
		return 9
	default:
		return Neutral
	}
}

func stalenessScore(h *health.Record) float64 {
	if h == nil || h.LastUpdate == nil || h.DaysSinceLastUpdate == nil {
		return Neutral
	}
	switch days := *h.DaysSinceLastUpdate; {
	case days <= 30:
		return 1
	case days <= 90:
		return 2
	case days <= 180:
		return 3
	case days <= 365:
		return 5
	case days <= 730:
		return 7
	default:
		return 9
	}
}

func stagnationScore(h *health.Record) float64 {
	if h != nil && h.IsStagnant {
		return 8
	}
	return 1
}

func flags(vulns []vuln.Vulnerability, h *health.Record) []string {
	out := []string{}
	var critical, high bool
	for _, v := range vulns {
		critical = critical || v.Severity == vuln.SeverityCritical
		high = high || v.Severity == vuln.SeverityHigh
	}
	if critical {
		out = append(out, FlagCriticalCVE)
	}
	if high {
		out = append(out, FlagHighCVE)
	}
	if h == nil {
		return out
	}
	if h.MaintenanceStatus == health.StatusAbandoned {
		out = append(out, FlagAbandoned)
	}
	if h.IsStagnant {
		out = append(out, FlagStagnationAlert)
	}
	if h.MaintainerCount == 0 {
		out = append(out, FlagNoMaintainerInfo)
	}
	return out
}
