package analysis

import (
	"github.com/samber/lo"

	"github.com/matzehuels/sbomlens/pkg/risk"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Risk level boundaries shared by the summary and the package filter.
const (
	LowRiskMax    = 3.0
	MediumRiskMax = 6.0
)

// Risk level names.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskLevel buckets a numeric score.
func RiskLevel(score float64) string {
	switch {
	case score <= LowRiskMax:
		return RiskLow
	case score <= MediumRiskMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RiskDistribution counts scored packages per risk level.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// OverallRisk is the averaged score across all packages.
type OverallRisk struct {
	Numeric      float64 `json:"numeric"`
	Grade        string  `json:"grade"`
	TrafficLight string  `json:"trafficLight"`
}

// Summary is the aggregate view of a snapshot.
type Summary struct {
	TotalPackages               int                   `json:"totalPackages"`
	PackagesWithVulnerabilities int                   `json:"packagesWithVulnerabilities"`
	TotalVulnerabilities        int                   `json:"totalVulnerabilities"`
	SeverityBreakdown           map[vuln.Severity]int `json:"severityBreakdown"`
	RiskDistribution            RiskDistribution      `json:"riskDistribution"`
	OverallRiskScore            OverallRisk           `json:"overallRiskScore"`
	HasDependencyInfo           bool                  `json:"hasDependencyInfo"`
	DirectCount                 *int                  `json:"directDependencies,omitempty"`
	TransitiveCount             *int                  `json:"transitiveDependencies,omitempty"`
}

// Summarize computes the aggregate statistics of s.
//
// The overall score treats unscored packages as neutral; the risk
// distribution skips them. An empty snapshot has an overall score of 0.
func Summarize(s *Snapshot) Summary {
	sum := Summary{
		TotalPackages:        len(s.Packages),
		TotalVulnerabilities: len(s.Vulnerabilities),
		SeverityBreakdown:    make(map[vuln.Severity]int, len(vuln.Severities)),
		HasDependencyInfo:    s.HasDependencyInfo,
	}
	for _, sev := range vuln.Severities {
		sum.SeverityBreakdown[sev] = 0
	}
	for _, v := range s.Vulnerabilities {
		sev := vuln.ParseSeverity(string(v.Severity))
		sum.SeverityBreakdown[sev]++
	}

	sum.PackagesWithVulnerabilities = lo.CountBy(s.Packages, func(p Package) bool {
		return len(p.Vulnerabilities) > 0
	})

	total := 0.0
	for i := range s.Packages {
		p := &s.Packages[i]
		total += p.Score()
		if p.RiskScore == nil {
			continue
		}
		switch RiskLevel(p.RiskScore.Numeric) {
		case RiskLow:
			sum.RiskDistribution.Low++
		case RiskMedium:
			sum.RiskDistribution.Medium++
		default:
			sum.RiskDistribution.High++
		}
	}

	avg := 0.0
	if n := len(s.Packages); n > 0 {
		avg = risk.Round(total / float64(n))
	}
	sum.OverallRiskScore = OverallRisk{
		Numeric:      avg,
		Grade:        risk.Grade(avg),
		TrafficLight: risk.TrafficLight(avg),
	}

	if s.HasDependencyInfo {
		direct := lo.CountBy(s.Packages, func(p Package) bool { return p.IsDirect })
		transitive := len(s.Packages) - direct
		sum.DirectCount = &direct
		sum.TransitiveCount = &transitive
	}
	return sum
}
