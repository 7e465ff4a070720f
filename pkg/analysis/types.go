package analysis

import (
	"time"

	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/risk"
	"github.com/matzehuels/sbomlens/pkg/sbom"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Dependency types assigned by [Resolve].
const (
	DependencyDirect     = "direct"
	DependencyTransitive = "transitive"
)

// Package is an SBOM package with everything the pipeline learned about it.
type Package struct {
	sbom.Package

	Vulnerabilities []vuln.Vulnerability `json:"vulnerabilities"`
	Health          *health.Record       `json:"health"`
	RiskScore       *risk.Score          `json:"riskScore"`

	IsDirect       bool     `json:"isDirect"`
	DependencyType string   `json:"dependencyType,omitempty"`
	DependsOn      []string `json:"dependsOn,omitempty"`
	DependencyOf   []string `json:"dependencyOf,omitempty"`
}

// Score returns the numeric risk score, or [risk.Neutral] when the package
// was never scored.
func (p *Package) Score() float64 {
	if p.RiskScore == nil {
		return risk.Neutral
	}
	return p.RiskScore.Numeric
}

// GraphNode is a package as drawn in the dependency graph.
type GraphNode struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Version            string   `json:"version"`
	IsDirect           bool     `json:"isDirect"`
	Ecosystem          string   `json:"ecosystem"`
	VulnerabilityCount int      `json:"vulnerabilityCount"`
	RiskScore          *float64 `json:"riskScore"`
}

// GraphEdge connects two packages; Source depends on Target.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the presentation form of the dependency relationships.
type Graph struct {
	Nodes  []GraphNode `json:"nodes"`
	Edges  []GraphEdge `json:"edges"`
	RootID *string     `json:"rootId"`
}

// Snapshot is one complete analysis. Snapshots are immutable once built;
// the store swaps whole snapshots.
type Snapshot struct {
	ID                string               `json:"id"`
	UploadedAt        time.Time            `json:"uploadedAt"`
	FileName          string               `json:"fileName"`
	Format            sbom.Format          `json:"format"`
	Packages          []Package            `json:"packages"`
	Vulnerabilities   []vuln.Vulnerability `json:"vulnerabilities"`
	DependencyGraph   *Graph               `json:"dependencyGraph"`
	HasDependencyInfo bool                 `json:"hasDependencyInfo"`
}

// Package returns the package with the given id.
func (s *Snapshot) Package(id string) (*Package, bool) {
	for i := range s.Packages {
		if s.Packages[i].ID == id {
			return &s.Packages[i], true
		}
	}
	return nil, false
}

// DedupeVulnerabilities flattens the per-package lists into one list with
// each id once. The first occurrence wins and order is preserved.
func DedupeVulnerabilities(pkgs []Package) []vuln.Vulnerability {
	seen := make(map[string]bool)
	out := []vuln.Vulnerability{}
	for _, p := range pkgs {
		for _, v := range p.Vulnerabilities {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	return out
}
