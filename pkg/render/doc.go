// Package render draws the dependency graph of an analysis as a
// node-link diagram.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := render.ToDOT(snap.DependencyGraph, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Styling
//
// Nodes are filled by risk traffic light (green, yellow, red; grey when the
// package was not scored). Direct dependencies get a heavier outline and
// the declared root, when it is a package, is drawn as a double octagon.
//
// # DOT Format
//
// The [ToDOT] output uses a top-to-bottom layout (rankdir=TB) with rounded
// box nodes. It can be rendered via [RenderSVG] or saved and processed with
// external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package render
