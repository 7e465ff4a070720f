package osv

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

const DefaultBaseURL = "https://api.osv.dev"

var ecosystems = map[string]string{
	"npm":       "npm",
	"PyPI":      "PyPI",
	"pypi":      "PyPI",
	"Maven":     "Maven",
	"maven":     "Maven",
	"NuGet":     "NuGet",
	"nuget":     "NuGet",
	"RubyGems":  "RubyGems",
	"rubygems":  "RubyGems",
	"crates.io": "crates.io",
	"Go":        "Go",
	"golang":    "Go",
	"Packagist": "Packagist",
	"composer":  "Packagist",
	"Hex":       "Hex",
	"Pub":       "Pub",
	"Debian":    "Debian",
	"Alpine":    "Alpine",
	"Linux":     "Linux",
}

// Ecosystem returns OSV's name for an ecosystem, or false if OSV does not
// cover it.
func Ecosystem(name string) (string, bool) {
	eco, ok := ecosystems[name]
	return eco, ok
}

type Client struct {
	*integrations.Client
	baseURL string
}

func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "osv:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// Query returns the advisories affecting one package version.
func (c *Client) Query(ctx context.Context, q vuln.Query) ([]vuln.Vulnerability, error) {
	return c.query(ctx, q, false)
}

// Refresh is Query without reading the cache.
func (c *Client) Refresh(ctx context.Context, q vuln.Query) ([]vuln.Vulnerability, error) {
	return c.query(ctx, q, true)
}

func (c *Client) query(ctx context.Context, q vuln.Query, refresh bool) ([]vuln.Vulnerability, error) {
	eco, ok := Ecosystem(q.Ecosystem)
	if !ok || q.Name == "" {
		return nil, nil
	}

	key := eco + ":" + q.Name + "@" + q.Version
	var vulns []vuln.Vulnerability
	err := c.Cached(ctx, key, refresh, &vulns, func() error {
		var resp queryResponse
		req := queryRequest{Package: queryPackage{Name: q.Name, Ecosystem: eco}, Version: q.Version}
		if err := c.PostJSON(ctx, c.baseURL+"/v1/query", req, &resp); err != nil {
			return err
		}
		vulns = make([]vuln.Vulnerability, 0, len(resp.Vulns))
		for _, v := range resp.Vulns {
			vulns = append(vulns, v.normalize(q.Name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vulns, nil
}

// =============================================================================
// Wire Types
// =============================================================================

type queryRequest struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version"`
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryResponse struct {
	Vulns []advisory `json:"vulns"`
}

type advisory struct {
	ID               string           `json:"id"`
	Aliases          []string         `json:"aliases"`
	Summary          string           `json:"summary"`
	Details          string           `json:"details"`
	Published        string           `json:"published"`
	Modified         string           `json:"modified"`
	Severity         []severityEntry  `json:"severity"`
	DatabaseSpecific databaseSpecific `json:"database_specific"`
	Affected         []affected       `json:"affected"`
	References       []vuln.Reference `json:"references"`
}

type severityEntry struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

type databaseSpecific struct {
	Severity any `json:"severity"`
}

type affected struct {
	Ranges []struct {
		Events []map[string]any `json:"events"`
	} `json:"ranges"`
}

// =============================================================================
// Normalization
// =============================================================================

func (a advisory) normalize(pkg string) vuln.Vulnerability {
	v := vuln.Vulnerability{
		ID:              a.ID,
		Aliases:         a.Aliases,
		Severity:        a.severity(),
		Summary:         a.Summary,
		Details:         a.Details,
		AffectedPackage: pkg,
		FixedVersion:    a.fixedVersion(),
		Published:       timePtr(a.Published),
		Modified:        timePtr(a.Modified),
		References:      a.References,
	}
	if v.Aliases == nil {
		v.Aliases = []string{}
	}
	if v.References == nil {
		v.References = []vuln.Reference{}
	}
	if v.Summary == "" {
		v.Summary = vuln.DefaultSummary
	}
	return v
}

func (a advisory) severity() vuln.Severity {
	for _, typ := range []string{"CVSS_V3", "CVSS_V2"} {
		for _, s := range a.Severity {
			if s.Type != typ {
				continue
			}
			score, err := strconv.ParseFloat(strings.TrimSpace(s.Score), 64)
			if err != nil {
				continue
			}
			if sev := vuln.SeverityFromScore(score); sev != vuln.SeverityUnknown {
				return sev
			}
		}
	}
	if label, ok := a.DatabaseSpecific.Severity.(string); ok {
		return vuln.ParseSeverity(label)
	}
	return vuln.SeverityUnknown
}

func (a advisory) fixedVersion() string {
	for _, aff := range a.Affected {
		for _, r := range aff.Ranges {
			for _, ev := range r.Events {
				if fixed, ok := ev["fixed"].(string); ok && fixed != "" {
					return fixed
				}
			}
		}
	}
	return ""
}

func timePtr(s string) *time.Time {
	t, ok := integrations.ParseTime(s)
	if !ok {
		return nil
	}
	return &t
}
