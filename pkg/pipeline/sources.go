package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/integrations"
	"github.com/matzehuels/sbomlens/pkg/integrations/github"
	"github.com/matzehuels/sbomlens/pkg/integrations/maven"
	"github.com/matzehuels/sbomlens/pkg/integrations/npm"
	"github.com/matzehuels/sbomlens/pkg/integrations/osv"
	"github.com/matzehuels/sbomlens/pkg/integrations/pypi"
	"github.com/matzehuels/sbomlens/pkg/sbom"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// RegistrySource fetches registry metadata for one package name. Names are
// in the registry's own form, e.g. "group:artifact" for Maven.
type RegistrySource interface {
	FetchPackage(ctx context.Context, name string, refresh bool) (*integrations.RegistryInfo, error)
}

// RepoSource fetches repository signals. Implementations return (nil, nil)
// for URLs they do not host.
type RepoSource interface {
	Signals(ctx context.Context, repoURL string) (*github.Signals, error)
	Refresh(ctx context.Context, repoURL string) (*github.Signals, error)
}

// Sources are the upstream services the pipeline enriches from. Nil fields
// disable the corresponding enrichment.
type Sources struct {
	Vulnerabilities vuln.Source
	Registries      map[string]RegistrySource // keyed by lowercase ecosystem
	Repositories    RepoSource
}

// SourceOptions configures the default upstream clients.
type SourceOptions struct {
	GitHubToken string
	CacheTTL    time.Duration // default cache.DefaultTTL
	Timeout     time.Duration // per request, default DefaultCallTimeout
	Retries     int
}

// DefaultSources wires the OSV, npm, PyPI, Maven Central and GitHub clients
// over one response cache. A nil cache disables caching.
func DefaultSources(c cache.Cache, opts SourceOptions) Sources {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultCallTimeout
	}
	tune := func(ic *integrations.Client) {
		ic.WithTimeout(opts.Timeout).WithRetries(opts.Retries)
	}

	vulns := osv.NewClient(c, opts.CacheTTL)
	npmc := npm.NewClient(c, opts.CacheTTL)
	pypic := pypi.NewClient(c, opts.CacheTTL)
	mavenc := maven.NewClient(c, opts.CacheTTL)
	gh := github.NewClient(c, opts.GitHubToken, opts.CacheTTL)
	for _, ic := range []*integrations.Client{vulns.Client, npmc.Client, pypic.Client, mavenc.Client, gh.Client} {
		tune(ic)
	}

	return Sources{
		Vulnerabilities: vulns,
		Registries: map[string]RegistrySource{
			"npm":   npmc,
			"pypi":  pypic,
			"maven": mavenc,
		},
		Repositories: gh,
	}
}

// registryFor returns the registry covering pkg and the name to look up,
// or false when no registry applies.
func (s Sources) registryFor(pkg sbom.Package) (RegistrySource, string, bool) {
	eco := strings.ToLower(pkg.Ecosystem)
	reg, ok := s.Registries[eco]
	if !ok || reg == nil {
		return nil, "", false
	}
	name := pkg.Name
	if eco == "maven" {
		name = maven.Coordinate(pkg.Group, pkg.Name)
	}
	if name == "" {
		return nil, "", false
	}
	return reg, name, true
}

// refreshing bypasses the response cache of sources that support it.
type refreshing struct {
	vuln.Source
}

func (r refreshing) Query(ctx context.Context, q vuln.Query) ([]vuln.Vulnerability, error) {
	if f, ok := r.Source.(interface {
		Refresh(context.Context, vuln.Query) ([]vuln.Vulnerability, error)
	}); ok {
		return f.Refresh(ctx, q)
	}
	return r.Source.Query(ctx, q)
}

// registryData converts registry metadata to the analyzer's input.
func registryData(info *integrations.RegistryInfo) *health.RegistryData {
	if info == nil {
		return nil
	}
	data := &health.RegistryData{
		TotalReleases:   info.TotalReleases,
		Releases:        make([]health.Release, 0, len(info.Releases)),
		MaintainerCount: len(info.Maintainers),
		RepositoryURL:   info.RepositoryURL,
		LatestVersion:   info.LatestVersion,
	}
	if !info.LastUpdate.IsZero() {
		t := info.LastUpdate
		data.LastUpdate = &t
	}
	for _, r := range info.Releases {
		data.Releases = append(data.Releases, health.Release{Version: r.Version, Date: r.Date})
	}
	return data
}

// repoData converts repository signals to the analyzer's input.
func repoData(s *github.Signals) *health.RepoData {
	if s == nil {
		return nil
	}
	return &health.RepoData{
		LastPush:             s.LastPush,
		ContributorCount:     s.ContributorCount,
		ContributorLocations: s.ContributorLocations,
		Stars:                s.Stars,
		Forks:                s.Forks,
		OpenIssues:           s.OpenIssues,
		Archived:             s.Archived,
	}
}
