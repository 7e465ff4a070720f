package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/risk"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the risk score and vulnerability count to node labels.
	// When false, only name and version are shown.
	Detailed bool
}

// Fill colors per traffic light.
var fills = map[string]string{
	"green":  "#c8e6c9",
	"yellow": "#fff59d",
	"red":    "#ef9a9a",
}

const unscoredFill = "#eeeeee"

// ToDOT converts a dependency graph to Graphviz DOT format.
// A nil graph produces an empty digraph.
func ToDOT(g *analysis.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#757575\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if g != nil {
		buf.WriteString("\n")
		root := ""
		if g.RootID != nil {
			root = *g.RootID
		}
		for _, n := range g.Nodes {
			attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == root)
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		}

		buf.WriteString("\n")
		for _, e := range g.Edges {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n analysis.GraphNode, detailed bool) string {
	label := n.Name + "\n" + n.Version
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("vulns: %d", n.VulnerabilityCount)}
	if n.RiskScore != nil {
		parts = append(parts, fmt.Sprintf("risk: %.1f (%s)", *n.RiskScore, risk.Grade(*n.RiskScore)))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n analysis.GraphNode, label string, isRoot bool) []string {
	fill := unscoredFill
	if n.RiskScore != nil {
		fill = fills[risk.TrafficLight(*n.RiskScore)]
	}
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("fillcolor=%q", fill)}
	if n.IsDirect {
		attrs = append(attrs, "penwidth=2")
	}
	if isRoot {
		attrs = append(attrs, "shape=doubleoctagon")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
