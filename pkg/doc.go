// Package pkg provides the core libraries of sbomlens, an SBOM analyzer.
//
// # Overview
//
// sbomlens reads a software bill of materials, finds the known
// vulnerabilities of every listed package, judges how well each package is
// maintained, and condenses both into a risk score from 1 to 10.
//
// # Architecture
//
// The data flow of one analysis:
//
//	CycloneDX / SPDX JSON
//	         ↓
//	    [sbom] package (detect format, normalize packages and edges)
//	         ↓
//	    [vuln] package (OSV lookup, batched)
//	         ↓
//	    [health] package (registry + GitHub signals, stagnation)
//	         ↓
//	    [risk] package (per-package score)
//	         ↓
//	    [analysis] package (dependency resolution, snapshot, statistics)
//	         ↓
//	    [store] package (current snapshot, swapped atomically)
//
// [pipeline] runs these stages with bounded concurrency and absorbs
// upstream failures. [render] turns the dependency graph into Graphviz DOT
// or SVG.
//
// # Quick Start
//
//	c, _ := cache.Open(ctx, cache.Options{Backend: cache.BackendFile, Dir: config.CacheDir()})
//	runner := pipeline.NewRunner(pipeline.DefaultSources(c, pipeline.SourceOptions{}), nil)
//
//	data, _ := os.ReadFile("bom.json")
//	snap, err := runner.Analyze(ctx, pipeline.Input{FileName: "bom.json", Data: data}, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(analysis.Summarize(snap).OverallRiskScore.Grade)
//
// # Main Packages
//
// [sbom] - Format detection and normalization. Packages get a fresh id, an
// ecosystem derived from their purl, and dependency edges keyed by that id.
//
// [dag] - Minimal directed graph used to classify direct and transitive
// dependencies and to detect cycles.
//
// [integrations] - HTTP clients for OSV, npm, PyPI, Maven Central and
// GitHub. Responses are cached through [cache] and retried on transient
// failures.
//
// [cache] - Response cache backends: file, bbolt, Redis, MongoDB and a
// no-op cache.
//
// [config] - TOML configuration layered with environment variables.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for pipeline stage and upstream call events.
package pkg
