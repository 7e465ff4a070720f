package vuln

import (
	"strings"
	"time"
)

// Severity is a coarse vulnerability severity.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Severities lists all severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}

// DefaultSummary is used for advisories that carry no summary.
const DefaultSummary = "No summary available"

// Rank orders severities: 0 for CRITICAL up to 4 for UNKNOWN.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if v == s {
			return i
		}
	}
	return len(Severities) - 1
}

// SeverityFromScore buckets a CVSS base score.
func SeverityFromScore(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// ParseSeverity normalizes a free-form severity label. MODERATE is an
// alias for MEDIUM; anything unrecognized is UNKNOWN.
func ParseSeverity(label string) Severity {
	s := Severity(strings.ToUpper(strings.TrimSpace(label)))
	if s == "MODERATE" {
		return SeverityMedium
	}
	for _, v := range Severities {
		if v == s {
			return s
		}
	}
	return SeverityUnknown
}

// Reference is a link attached to an advisory.
type Reference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Vulnerability is a known advisory affecting a package.
type Vulnerability struct {
	ID              string      `json:"id"`
	Aliases         []string    `json:"aliases"`
	Severity        Severity    `json:"severity"`
	Summary         string      `json:"summary"`
	Details         string      `json:"details"`
	AffectedPackage string      `json:"affectedPackage"`
	FixedVersion    string      `json:"fixedVersion,omitempty"`
	Published       *time.Time  `json:"published,omitempty"`
	Modified        *time.Time  `json:"modified,omitempty"`
	References      []Reference `json:"references"`
}

// Query identifies one package version to look up.
type Query struct {
	Ecosystem string
	Name      string
	Version   string
}

// Key returns the name@version identity results are keyed by.
func (q Query) Key() string { return q.Name + "@" + q.Version }
