package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/pipeline"
	"github.com/matzehuels/sbomlens/pkg/render"
)

// Graph output formats, chosen by the output file extension.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type graphOptions struct {
	output   string
	format   string
	noEnrich bool
	noCache  bool
	detailed bool
}

// graphCommand creates the graph export command.
func (c *CLI) graphCommand() *cobra.Command {
	var o graphOptions

	cmd := &cobra.Command{
		Use:   "graph [sbom.json]",
		Short: "Export the dependency graph as Graphviz DOT or SVG",
		Long: `Export the dependency graph of an SBOM.

The format follows the output extension (.dot or .svg) unless --format is
given. Without --output the DOT source is written to stdout.

Nodes are colored by risk, which needs the vulnerability and health lookups;
--no-enrich skips them and draws the bare structure.`,
		Example: `  sbomlens graph bom.json -o deps.svg
  sbomlens graph bom.json --no-enrich | dot -Tpng > deps.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := graphFormat(o.output, o.format)
			if err != nil {
				return err
			}
			o.format = format
			return c.runGraph(cmd.Context(), args[0], o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (.dot or .svg)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: dot, svg (default: from --output)")
	cmd.Flags().BoolVar(&o.noEnrich, "no-enrich", false, "skip vulnerability and health lookups")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&o.detailed, "detailed", true, "label nodes with vulnerability counts and risk")

	return cmd
}

// graphFormat resolves the output format from the flag or the extension.
func graphFormat(output, format string) (string, error) {
	if format == "" {
		switch ext := strings.ToLower(filepath.Ext(output)); ext {
		case "", ".dot", ".gv":
			format = formatDOT
		case ".svg":
			format = formatSVG
		default:
			return "", errors.New(errors.ErrCodeInvalidInput, "cannot infer graph format from %q (use .dot or .svg)", output)
		}
	}
	format = strings.ToLower(format)
	if format != formatDOT && format != formatSVG {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q (want dot or svg)", format)
	}
	if format == formatSVG && output == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "svg output needs --output")
	}
	return format, nil
}

// runGraph analyzes path and writes its dependency graph.
func (c *CLI) runGraph(ctx context.Context, path string, o graphOptions) error {
	snap, err := c.analyzeFile(ctx, path, o.noCache, func(opts *pipeline.Options) {
		opts.SkipHealth = o.noEnrich
		opts.SkipVulnerabilities = o.noEnrich
	})
	if err != nil {
		return err
	}
	if !snap.HasDependencyInfo || snap.DependencyGraph == nil {
		return errors.New(errors.ErrCodeNotFound, "%s has no dependency information", snap.FileName)
	}

	data, err := graphBytes(ctx, snap.DependencyGraph, o)
	if err != nil {
		return err
	}
	if o.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(o.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.output, err)
	}
	printSuccess("Exported %d packages, %d edges", len(snap.DependencyGraph.Nodes), len(snap.DependencyGraph.Edges))
	printFile(o.output)
	return nil
}

func graphBytes(ctx context.Context, g *analysis.Graph, o graphOptions) ([]byte, error) {
	dot := render.ToDOT(g, render.Options{Detailed: o.detailed && !o.noEnrich})
	if o.format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return svg, nil
}
