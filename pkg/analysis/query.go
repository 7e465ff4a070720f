package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/risk"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Sort fields accepted by [FilterPackages].
const (
	SortName            = "name"
	SortRisk            = "risk"
	SortVulnerabilities = "vulnerabilities"
	SortLastUpdate      = "lastUpdate"
)

// PackageQuery selects and orders packages. Severity and RiskLevel are
// comma-separated lists; empty fields do not filter.
type PackageQuery struct {
	Search    string
	Severity  string
	RiskLevel string
	SortBy    string
	SortOrder string
}

// Validate reports unknown severities, risk levels or sort options.
func (q PackageQuery) Validate() error {
	if err := errors.ValidateSeverities(q.Severity); err != nil {
		return err
	}
	if err := errors.ValidateRiskLevels(q.RiskLevel); err != nil {
		return err
	}
	return errors.ValidateSort(q.SortBy, q.SortOrder)
}

// VulnQuery selects vulnerabilities.
type VulnQuery struct {
	Severity string
	Search   string
}

// Validate reports unknown severities.
func (q VulnQuery) Validate() error {
	return errors.ValidateSeverities(q.Severity)
}

// PackageSummary is the list form of a package.
type PackageSummary struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Version            string        `json:"version"`
	Ecosystem          string        `json:"ecosystem"`
	License            string        `json:"license"`
	VulnerabilityCount int           `json:"vulnerabilityCount"`
	RiskScore          *risk.Score   `json:"riskScore"`
	MaintenanceStatus  health.Status `json:"maintenanceStatus,omitempty"`
	HasStagnationAlert bool          `json:"hasStagnationAlert"`
	IsDirect           bool          `json:"isDirect"`
}

// Summary returns the list form of p.
func (p *Package) Summary() PackageSummary {
	s := PackageSummary{
		ID:                 p.ID,
		Name:               p.Name,
		Version:            p.Version,
		Ecosystem:          p.Ecosystem,
		License:            p.License,
		VulnerabilityCount: len(p.Vulnerabilities),
		RiskScore:          p.RiskScore,
		IsDirect:           p.IsDirect,
	}
	if p.Health != nil {
		s.MaintenanceStatus = p.Health.MaintenanceStatus
		s.HasStagnationAlert = p.Health.IsStagnant
	}
	return s
}

// FilterPackages returns the packages matching q in the requested order.
// The input slice is not modified and sorting is stable.
func FilterPackages(pkgs []Package, q PackageQuery) []Package {
	out := slices.Clone(pkgs)

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		out = lo.Filter(out, func(p Package, _ int) bool {
			return strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Version), needle)
		})
	}

	if sevs := severitySet(q.Severity); len(sevs) > 0 {
		out = lo.Filter(out, func(p Package, _ int) bool {
			return lo.SomeBy(p.Vulnerabilities, func(v vuln.Vulnerability) bool {
				return sevs[v.Severity]
			})
		})
	}

	if levels := errors.SplitList(strings.ToLower(q.RiskLevel)); len(levels) > 0 {
		out = lo.Filter(out, func(p Package, _ int) bool {
			return slices.Contains(levels, RiskLevel(p.Score()))
		})
	}

	if q.SortBy != "" {
		order := 1
		if q.SortOrder == "desc" {
			order = -1
		}
		slices.SortStableFunc(out, func(a, b Package) int {
			return order * comparePackages(&a, &b, q.SortBy)
		})
	}
	return out
}

func comparePackages(a, b *Package, field string) int {
	switch field {
	case SortName:
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	case SortRisk:
		return cmp.Compare(a.Score(), b.Score())
	case SortVulnerabilities:
		return cmp.Compare(len(a.Vulnerabilities), len(b.Vulnerabilities))
	case SortLastUpdate:
		return cmp.Compare(lastUpdate(a), lastUpdate(b))
	default:
		return 0
	}
}

// lastUpdate is the registry update time in Unix milliseconds, 0 if unknown.
func lastUpdate(p *Package) int64 {
	if p.Health == nil || p.Health.LastUpdate == nil {
		return 0
	}
	return p.Health.LastUpdate.UnixMilli()
}

// FilterVulnerabilities returns the vulnerabilities matching q ordered from
// CRITICAL to UNKNOWN. Ties keep their input order.
func FilterVulnerabilities(vulns []vuln.Vulnerability, q VulnQuery) []vuln.Vulnerability {
	out := slices.Clone(vulns)
	if out == nil {
		out = []vuln.Vulnerability{}
	}

	if sevs := severitySet(q.Severity); len(sevs) > 0 {
		out = lo.Filter(out, func(v vuln.Vulnerability, _ int) bool {
			return sevs[v.Severity]
		})
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		out = lo.Filter(out, func(v vuln.Vulnerability, _ int) bool {
			return strings.Contains(strings.ToLower(v.ID), needle) ||
				strings.Contains(strings.ToLower(v.Summary), needle) ||
				strings.Contains(strings.ToLower(v.AffectedPackage), needle)
		})
	}

	slices.SortStableFunc(out, func(a, b vuln.Vulnerability) int {
		return cmp.Compare(a.Severity.Rank(), b.Severity.Rank())
	})
	return out
}

func severitySet(csv string) map[vuln.Severity]bool {
	set := make(map[vuln.Severity]bool)
	for _, s := range errors.SplitList(csv) {
		set[vuln.Severity(strings.ToUpper(s))] = true
	}
	return set
}
