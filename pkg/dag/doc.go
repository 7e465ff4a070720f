// Package dag provides the directed graph behind dependency resolution.
//
// # Overview
//
// Nodes are package keys (SBOM package ids plus an optional synthetic root)
// and an edge From→To means "From depends on To". The graph keeps forward
// and reverse adjacency so both "what does X depend on" and "what depends
// on X" are constant-time lookups.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "root"})
//	g.AddNode(dag.Node{ID: "a"})
//	g.AddEdge(dag.Edge{From: "root", To: "a"})
//	g.Children("root") // ["a"]
//
// Edges may only connect nodes that were added first; [DAG.AddEdge]
// returns [ErrUnknownSourceNode] or [ErrUnknownTargetNode] otherwise, which
// is how callers drop dangling references. Duplicate edges are ignored.
//
// # Cycles
//
// Dependency data taken from SBOMs is not guaranteed to be acyclic, so the
// graph accepts cycles. [DAG.Validate] reports them with [ErrGraphHasCycle]
// for callers that want to know.
//
// # Ordering
//
// [DAG.Nodes], [DAG.Sources] and adjacency lists preserve insertion order,
// which keeps downstream output deterministic.
package dag
