package analysis

import (
	"errors"

	"github.com/matzehuels/sbomlens/pkg/dag"
	"github.com/matzehuels/sbomlens/pkg/sbom"
)

// Resolution is the result of [Resolve].
type Resolution struct {
	Packages          []Package
	Graph             *Graph
	HasDependencyInfo bool

	// HasCycles reports whether the declared edges form a cycle.
	HasCycles bool
}

// Resolve classifies packages as direct or transitive and builds the
// dependency graph. Without edges the packages are returned unchanged, all
// with IsDirect false, and Graph is nil.
//
// Edges that reference unknown keys or loop onto themselves are dropped.
// Cycles are kept; they are legal in dependency data.
func Resolve(pkgs []Package, deps *sbom.Dependencies) Resolution {
	if deps == nil || len(deps.Edges) == 0 {
		return Resolution{Packages: pkgs}
	}

	g := buildGraph(pkgs, deps)
	known := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		known[p.ID] = true
	}

	direct := make(map[string]bool)
	if deps.RootID != "" {
		for _, id := range g.Children(deps.RootID) {
			direct[id] = true
		}
	} else {
		for _, p := range pkgs {
			if onlyRootParents(g.Parents(p.ID)) {
				direct[p.ID] = true
			}
		}
	}

	out := make([]Package, len(pkgs))
	for i, p := range pkgs {
		p.IsDirect = direct[p.ID]
		p.DependencyType = DependencyTransitive
		if p.IsDirect {
			p.DependencyType = DependencyDirect
		}
		p.DependsOn = realKeys(g.Children(p.ID), known)
		p.DependencyOf = realKeys(g.Parents(p.ID), known)
		out[i] = p
	}

	graph := &Graph{
		Nodes: make([]GraphNode, 0, len(out)),
		Edges: []GraphEdge{},
	}
	for _, p := range out {
		node := GraphNode{
			ID:                 p.ID,
			Name:               p.Name,
			Version:            p.Version,
			IsDirect:           p.IsDirect,
			Ecosystem:          p.Ecosystem,
			VulnerabilityCount: len(p.Vulnerabilities),
		}
		if p.RiskScore != nil {
			score := p.RiskScore.Numeric
			node.RiskScore = &score
		}
		graph.Nodes = append(graph.Nodes, node)
	}
	for _, e := range g.Edges() {
		if known[e.From] && known[e.To] {
			graph.Edges = append(graph.Edges, GraphEdge{Source: e.From, Target: e.To})
		}
	}
	if deps.RootID != "" && deps.RootID != sbom.RootRef {
		root := deps.RootID
		graph.RootID = &root
	}

	return Resolution{
		Packages:          out,
		Graph:             graph,
		HasDependencyInfo: true,
		HasCycles:         errors.Is(g.Validate(), dag.ErrGraphHasCycle),
	}
}

// buildGraph loads packages and the root marker as nodes and adds every
// edge between them.
func buildGraph(pkgs []Package, deps *sbom.Dependencies) *dag.DAG {
	g := dag.New(nil)
	for _, p := range pkgs {
		_ = g.AddNode(dag.Node{ID: p.ID, Meta: dag.Metadata{"name": p.Name}})
	}
	_ = g.AddNode(dag.Node{ID: sbom.RootRef})
	for _, e := range deps.Edges {
		// Unknown endpoints and self loops are rejected by the graph.
		_ = g.AddEdge(dag.Edge{From: e.From, To: e.To})
	}
	return g
}

func onlyRootParents(parents []string) bool {
	for _, id := range parents {
		if id != sbom.RootRef {
			return false
		}
	}
	return true
}

func realKeys(ids []string, known map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if id != sbom.RootRef && known[id] {
			out = append(out, id)
		}
	}
	return out
}
