// Package analysis holds the analyzed view of an SBOM: enriched packages,
// the deduplicated vulnerability list and the dependency graph.
//
// # Resolution
//
// [Resolve] classifies every package as a direct or transitive dependency
// using the edges the SBOM declares. When the document names a root, the
// root's children are direct. Without a declared root, a package nobody
// else depends on is treated as direct.
//
//	res := analysis.Resolve(pkgs, doc.Dependencies)
//	if res.HasDependencyInfo {
//	    fmt.Println(len(res.Graph.Nodes), "nodes")
//	}
//
// # Queries
//
// [Summarize], [FilterPackages] and [FilterVulnerabilities] implement the
// read side used by the HTTP API and the CLI. They never modify the snapshot
// they are given.
package analysis
