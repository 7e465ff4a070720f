package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/integrations"
	"github.com/matzehuels/sbomlens/pkg/integrations/github"
	"github.com/matzehuels/sbomlens/pkg/integrations/maven"
	"github.com/matzehuels/sbomlens/pkg/observability"
	"github.com/matzehuels/sbomlens/pkg/risk"
	"github.com/matzehuels/sbomlens/pkg/sbom"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Runner executes the analysis pipeline against a fixed set of sources.
//
// The Runner is stateless apart from its sources and logger; it does not
// keep snapshots. Multiple goroutines can use the same Runner.
type Runner struct {
	Sources Sources
	Logger  *log.Logger

	// Now returns the reference time for health analysis. Defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a runner. If logger is nil, output is discarded.
func NewRunner(sources Sources, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Sources: sources, Logger: logger, Now: time.Now}
}

// Analyze runs every stage over in and returns the finished snapshot.
//
// Parse failures are returned with their error codes intact
// ([errors.ErrCodeInvalidJSON], [errors.ErrCodeUnsupportedFormat], ...).
// Enrichment failures never fail the run. A cancelled ctx fails the run so
// that callers do not publish a half-enriched snapshot.
func (r *Runner) Analyze(ctx context.Context, in Input, opts Options) (*analysis.Snapshot, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	// Stage 1: Parse
	stageStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageParse, len(in.Data))
	doc, err := sbom.Parse(in.Data)
	observability.Pipeline().OnStageComplete(ctx, observability.StageParse, len(in.Data), time.Since(stageStart), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("parsed SBOM",
		"file", in.FileName,
		"format", doc.Format,
		"packages", len(doc.Packages),
		"dependency_info", doc.Dependencies != nil)

	// Stage 2: Vulnerabilities
	vulns := r.lookupVulnerabilities(ctx, doc.Packages, opts)

	// Stage 3: Health
	records := r.enrichHealth(ctx, doc.Packages, opts)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "analysis interrupted")
	}

	// Stage 4: Score
	stageStart = time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageScore, len(doc.Packages))
	pkgs := make([]analysis.Package, len(doc.Packages))
	for i, p := range doc.Packages {
		found := attribute(vulns[vulnQuery(p).Key()], p.Name)
		score := risk.Compute(found, records[p.ID])
		pkgs[i] = analysis.Package{
			Package:         p,
			Vulnerabilities: found,
			Health:          records[p.ID],
			RiskScore:       &score,
		}
	}
	observability.Pipeline().OnStageComplete(ctx, observability.StageScore, len(pkgs), time.Since(stageStart), nil)

	// Stage 5: Resolve
	stageStart = time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageResolve, len(pkgs))
	res := analysis.Resolve(pkgs, doc.Dependencies)
	if res.HasCycles {
		r.Logger.Debug("dependency graph has cycles")
	}
	observability.Pipeline().OnStageComplete(ctx, observability.StageResolve, len(pkgs), time.Since(stageStart), nil)

	snap := &analysis.Snapshot{
		ID:                uuid.NewString(),
		UploadedAt:        r.now().UTC(),
		FileName:          in.FileName,
		Format:            doc.Format,
		Packages:          res.Packages,
		Vulnerabilities:   analysis.DedupeVulnerabilities(res.Packages),
		DependencyGraph:   res.Graph,
		HasDependencyInfo: res.HasDependencyInfo,
	}

	r.Logger.Info("analysis complete",
		"packages", len(snap.Packages),
		"vulnerabilities", len(snap.Vulnerabilities),
		"duration", time.Since(start).Round(time.Millisecond))
	return snap, nil
}

// =============================================================================
// Vulnerability stage
// =============================================================================

func (r *Runner) lookupVulnerabilities(ctx context.Context, pkgs []sbom.Package, opts Options) map[string][]vuln.Vulnerability {
	if opts.SkipVulnerabilities || r.Sources.Vulnerabilities == nil {
		r.Logger.Debug("skipping vulnerability lookup")
		return nil
	}

	queries := make([]vuln.Query, len(pkgs))
	for i, p := range pkgs {
		queries[i] = vulnQuery(p)
	}

	src := r.Sources.Vulnerabilities
	if opts.Refresh {
		src = refreshing{src}
	}
	lookup := &vuln.Lookup{
		Source:      src,
		Concurrency: opts.VulnConcurrency,
		Pause:       opts.VulnPause,
		Timeout:     opts.CallTimeout,
		Logger:      r.Logger,
	}

	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageVulnerabilities, len(queries))
	results := lookup.Run(ctx, queries)
	observability.Pipeline().OnStageComplete(ctx, observability.StageVulnerabilities, len(queries), time.Since(start), nil)

	total := 0
	for _, v := range results {
		total += len(v)
	}
	r.Logger.Info("queried vulnerabilities",
		"queries", len(results),
		"findings", total,
		"duration", time.Since(start).Round(time.Millisecond))
	return results
}

// vulnQuery builds the OSV query for a package. Maven advisories are
// keyed by "group:artifact".
func vulnQuery(p sbom.Package) vuln.Query {
	name := p.Name
	if strings.EqualFold(p.Ecosystem, sbom.EcosystemMaven) {
		if coord := maven.Coordinate(p.Group, p.Name); coord != "" {
			name = coord
		}
	}
	return vuln.Query{Ecosystem: p.Ecosystem, Name: name, Version: p.Version}
}

// attribute copies found with every advisory attributed to name, so that
// affectedPackage always names a package of the snapshot.
func attribute(found []vuln.Vulnerability, name string) []vuln.Vulnerability {
	out := make([]vuln.Vulnerability, len(found))
	for i, v := range found {
		v.AffectedPackage = name
		out[i] = v
	}
	return out
}

// =============================================================================
// Health stage
// =============================================================================

// enrichHealth fetches health records in paced batches, keyed by package id.
// Packages without obtainable data map to nil.
func (r *Runner) enrichHealth(ctx context.Context, pkgs []sbom.Package, opts Options) map[string]*health.Record {
	records := make(map[string]*health.Record, len(pkgs))
	if opts.SkipHealth {
		r.Logger.Debug("skipping health enrichment")
		return records
	}

	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageHealth, len(pkgs))

	var mu sync.Mutex
	size := opts.HealthConcurrency
	for from := 0; from < len(pkgs); from += size {
		if from > 0 && !vuln.Wait(ctx, opts.HealthPause) {
			r.Logger.Debug("health enrichment interrupted", "remaining", len(pkgs)-from)
			break
		}

		var g errgroup.Group
		for _, p := range pkgs[from:min(from+size, len(pkgs))] {
			g.Go(func() error {
				rec := r.packageHealth(ctx, p, opts)
				mu.Lock()
				records[p.ID] = rec
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	known := 0
	for _, rec := range records {
		if rec != nil {
			known++
		}
	}
	observability.Pipeline().OnStageComplete(ctx, observability.StageHealth, len(pkgs), time.Since(start), nil)
	r.Logger.Info("fetched health data",
		"packages", len(pkgs),
		"with_data", known,
		"duration", time.Since(start).Round(time.Millisecond))
	return records
}

// packageHealth runs the registry call, then the repository call, then the
// analyzer. A failed call contributes no data.
func (r *Runner) packageHealth(ctx context.Context, p sbom.Package, opts Options) *health.Record {
	var info *integrations.RegistryInfo
	if src, name, ok := r.Sources.registryFor(p); ok {
		callCtx, cancel := context.WithTimeout(ctx, opts.CallTimeout)
		fetched, err := src.FetchPackage(callCtx, name, opts.Refresh)
		cancel()
		if err != nil {
			r.degraded(ctx, "registry", p, err)
		} else {
			info = fetched
		}
	}

	var signals *github.Signals
	repoURL := p.RepositoryURL
	if info != nil && info.RepositoryURL != "" {
		repoURL = info.RepositoryURL
	}
	if r.Sources.Repositories != nil && strings.Contains(repoURL, "github.com") {
		callCtx, cancel := context.WithTimeout(ctx, opts.CallTimeout)
		var err error
		if opts.Refresh {
			signals, err = r.Sources.Repositories.Refresh(callCtx, repoURL)
		} else {
			signals, err = r.Sources.Repositories.Signals(callCtx, repoURL)
		}
		cancel()
		if err != nil {
			r.degraded(ctx, "repository", p, err)
			signals = nil
		}
	}

	return health.Analyze(registryData(info), repoData(signals), p.Version, r.now())
}

func (r *Runner) degraded(ctx context.Context, source string, p sbom.Package, err error) {
	observability.Pipeline().OnDegraded(ctx, source, p.Key(), err)
	r.Logger.Debug("enrichment failed", "source", source, "package", p.Key(), "error", err)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
