package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/pipeline"
)

type analyzeOptions struct {
	jsonOut     string
	interactive bool
	noCache     bool
	skipHealth  bool
	skipVulns   bool
	refresh     bool
	top         int
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var o analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [sbom.json]",
		Short: "Analyze an SBOM for vulnerabilities and dependency health",
		Long: `Analyze a CycloneDX or SPDX JSON document.

Every package is checked against OSV for known vulnerabilities, its registry
(npm, PyPI, Maven Central) and GitHub repository are inspected for maintenance
signals, and a risk score from 1 (low) to 10 (high) is computed.

Upstream responses are cached; use --no-cache or --refresh to bypass it.`,
		Example: `  sbomlens analyze bom.json
  sbomlens analyze bom.json --json report.json
  sbomlens analyze bom.json --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.top < 0 {
				return fmt.Errorf("--top must not be negative")
			}
			return c.runAnalyze(cmd.Context(), args[0], o)
		},
	}

	cmd.Flags().StringVar(&o.jsonOut, "json", "", "write the full analysis as JSON to this file (- for stdout)")
	cmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, "browse the results interactively")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached responses but update the cache")
	cmd.Flags().BoolVar(&o.skipHealth, "skip-health", false, "skip registry and GitHub health checks")
	cmd.Flags().BoolVar(&o.skipVulns, "skip-vulns", false, "skip the vulnerability lookup")
	cmd.Flags().IntVar(&o.top, "top", defaultTop, "number of riskiest packages to list")

	return cmd
}

// runAnalyze analyzes the file at path and reports the result.
func (c *CLI) runAnalyze(ctx context.Context, path string, o analyzeOptions) error {
	snap, err := c.analyzeFile(ctx, path, o.noCache, func(opts *pipeline.Options) {
		opts.SkipHealth = o.skipHealth
		opts.SkipVulnerabilities = o.skipVulns
		opts.Refresh = o.refresh
	})
	if err != nil {
		return err
	}

	if o.jsonOut != "" {
		if err := writeSnapshot(snap, o.jsonOut); err != nil {
			return err
		}
		if o.jsonOut == "-" {
			return nil
		}
	}

	if o.interactive {
		_, err := tea.NewProgram(NewBrowserModel(snap), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}

	printReport(snap, o.top)
	if o.jsonOut != "" {
		printFile(o.jsonOut)
	}
	return nil
}

// analyzeFile reads path and runs the pipeline over it with a spinner.
// tune adjusts the configured pipeline options.
func (c *CLI) analyzeFile(ctx context.Context, path string, noCache bool, tune func(*pipeline.Options)) (*analysis.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingFile, err, "read %s", path)
	}

	runner, closeRunner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer closeRunner()

	opts := c.settings().PipelineOptions()
	if tune != nil {
		tune(&opts)
	}

	name := filepath.Base(path)
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %s...", name))
	spinner.Start()

	snap, err := runner.Analyze(ctx, pipeline.Input{FileName: name, Data: data}, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return nil, fmt.Errorf("analyze %s: %w", name, err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Analyzed %d packages", len(snap.Packages)))
	return snap, nil
}

// writeSnapshot writes snap as indented JSON to path, or stdout for "-".
func writeSnapshot(snap *analysis.Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// riskiest returns up to n packages ordered by descending risk.
func riskiest(snap *analysis.Snapshot, n int) []analysis.Package {
	pkgs := analysis.FilterPackages(snap.Packages, analysis.PackageQuery{
		SortBy:    analysis.SortRisk,
		SortOrder: "desc",
	})
	if len(pkgs) > n {
		pkgs = pkgs[:n]
	}
	return pkgs
}

// printReport prints the summary and the riskiest packages.
func printReport(snap *analysis.Snapshot, top int) {
	fmt.Println()
	fmt.Print(summaryView(snap, analysis.Summarize(snap)))

	if top > 0 && len(snap.Packages) > 0 {
		fmt.Println()
		fmt.Println(riskTable(riskiest(snap, top), time.Now()))
	}

	if len(snap.Packages) == 0 {
		printWarning("The document lists no packages")
	} else if !snap.HasDependencyInfo {
		printInfo("No dependency information; direct and transitive packages are not distinguished")
	}
	fmt.Println()
	printNextStep("Browse all packages", fmt.Sprintf("%s analyze %s -i", appName, snap.FileName))
}
