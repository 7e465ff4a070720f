package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

func names(pkgs []Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

func fixturePackages() []Package {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	express := scored("1", 4.8, vuln.Vulnerability{ID: "V1", Severity: vuln.SeverityCritical})
	express.Name = "express"
	express.Version = "4.17.1"
	express.Health = &health.Record{LastUpdate: &recent, MaintenanceStatus: health.StatusActive}

	lodash := scored("2", 2.0)
	lodash.Name = "lodash"
	lodash.Version = "4.17.21"
	lodash.Health = &health.Record{LastUpdate: &old, IsStagnant: true, MaintenanceStatus: health.StatusAbandoned}

	requests := pkg("3", "Requests")
	requests.Version = "2.0.0"
	requests.Vulnerabilities = []vuln.Vulnerability{
		{ID: "V2", Severity: vuln.SeverityLow},
		{ID: "V3", Severity: vuln.SeverityHigh},
	}

	return []Package{express, lodash, requests}
}

func TestFilterPackagesSearch(t *testing.T) {
	pkgs := fixturePackages()

	assert.Equal(t, []string{"express", "lodash"}, names(FilterPackages(pkgs, PackageQuery{Search: "4.17"})))
	assert.Equal(t, []string{"Requests"}, names(FilterPackages(pkgs, PackageQuery{Search: "REQ"})))
	assert.Len(t, FilterPackages(pkgs, PackageQuery{}), 3)
}

func TestFilterPackagesSeverity(t *testing.T) {
	pkgs := fixturePackages()

	assert.Equal(t, []string{"express"}, names(FilterPackages(pkgs, PackageQuery{Severity: "critical"})))
	assert.Equal(t, []string{"express", "Requests"}, names(FilterPackages(pkgs, PackageQuery{Severity: "CRITICAL, high"})))
}

func TestFilterPackagesRiskLevel(t *testing.T) {
	pkgs := fixturePackages()

	assert.Equal(t, []string{"lodash"}, names(FilterPackages(pkgs, PackageQuery{RiskLevel: "low"})))
	// Unscored packages count as 5.
	assert.Equal(t, []string{"express", "Requests"}, names(FilterPackages(pkgs, PackageQuery{RiskLevel: "medium"})))
	assert.Empty(t, FilterPackages(pkgs, PackageQuery{RiskLevel: "high"}))
}

func TestFilterPackagesSort(t *testing.T) {
	pkgs := fixturePackages()

	tests := []struct {
		by, order string
		want      []string
	}{
		{SortName, "", []string{"express", "lodash", "Requests"}},
		{SortName, "desc", []string{"Requests", "lodash", "express"}},
		{SortRisk, "", []string{"lodash", "express", "Requests"}},
		{SortRisk, "desc", []string{"Requests", "express", "lodash"}},
		{SortVulnerabilities, "desc", []string{"Requests", "express", "lodash"}},
		{SortLastUpdate, "", []string{"Requests", "lodash", "express"}},
	}
	for _, tt := range tests {
		t.Run(tt.by+"_"+tt.order, func(t *testing.T) {
			got := FilterPackages(pkgs, PackageQuery{SortBy: tt.by, SortOrder: tt.order})
			assert.Equal(t, tt.want, names(got))
		})
	}
	assert.Equal(t, "express", pkgs[0].Name, "input must not be reordered")
}

func TestPackageQueryValidate(t *testing.T) {
	assert.NoError(t, PackageQuery{Severity: "high", RiskLevel: "LOW", SortBy: "risk", SortOrder: "desc"}.Validate())

	err := PackageQuery{SortBy: "size"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidQuery))

	assert.Error(t, PackageQuery{RiskLevel: "extreme"}.Validate())
	assert.Error(t, VulnQuery{Severity: "urgent"}.Validate())
}

func TestPackageSummary(t *testing.T) {
	pkgs := fixturePackages()

	s := pkgs[1].Summary()
	assert.Equal(t, "lodash", s.Name)
	assert.True(t, s.HasStagnationAlert)
	assert.Equal(t, health.StatusAbandoned, s.MaintenanceStatus)

	s = pkgs[2].Summary()
	assert.Equal(t, 2, s.VulnerabilityCount)
	assert.False(t, s.HasStagnationAlert)
	assert.Nil(t, s.RiskScore)
}

func TestFilterVulnerabilities(t *testing.T) {
	vulns := []vuln.Vulnerability{
		{ID: "GHSA-low", Severity: vuln.SeverityLow, Summary: "minor", AffectedPackage: "lodash"},
		{ID: "CVE-unknown", Severity: vuln.SeverityUnknown, Summary: "prototype pollution", AffectedPackage: "minimist"},
		{ID: "CVE-crit", Severity: vuln.SeverityCritical, Summary: "RCE", AffectedPackage: "express"},
		{ID: "CVE-high-1", Severity: vuln.SeverityHigh, Summary: "ReDoS", AffectedPackage: "lodash"},
		{ID: "CVE-high-2", Severity: vuln.SeverityHigh, Summary: "XSS", AffectedPackage: "express"},
	}

	ids := func(vs []vuln.Vulnerability) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = v.ID
		}
		return out
	}

	assert.Equal(t,
		[]string{"CVE-crit", "CVE-high-1", "CVE-high-2", "GHSA-low", "CVE-unknown"},
		ids(FilterVulnerabilities(vulns, VulnQuery{})))
	assert.Equal(t, []string{"CVE-high-1", "CVE-high-2"}, ids(FilterVulnerabilities(vulns, VulnQuery{Severity: "high"})))
	assert.Equal(t, []string{"CVE-high-1", "GHSA-low"}, ids(FilterVulnerabilities(vulns, VulnQuery{Search: "LODASH"})))
	assert.Equal(t, []string{"CVE-unknown"}, ids(FilterVulnerabilities(vulns, VulnQuery{Search: "pollution"})))
	assert.NotNil(t, FilterVulnerabilities(nil, VulnQuery{}))
}

func TestDedupeVulnerabilities(t *testing.T) {
	a := pkg("a", "a")
	a.Vulnerabilities = []vuln.Vulnerability{{ID: "V1"}, {ID: "V2"}}
	b := pkg("b", "b")
	b.Vulnerabilities = []vuln.Vulnerability{{ID: "V2", Summary: "second"}, {ID: "V3"}}

	got := DedupeVulnerabilities([]Package{a, b})
	require.Len(t, got, 3)
	assert.Equal(t, "V1", got[0].ID)
	assert.Equal(t, "V2", got[1].ID)
	assert.Empty(t, got[1].Summary, "first occurrence wins")
	assert.Equal(t, "V3", got[2].ID)
}

func TestSnapshotPackage(t *testing.T) {
	s := &Snapshot{Packages: fixturePackages()}
	p, ok := s.Package("2")
	require.True(t, ok)
	assert.Equal(t, "lodash", p.Name)
	_, ok = s.Package("nope")
	assert.False(t, ok)
}
