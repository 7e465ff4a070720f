package integrations

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// MaxReleaseHistory caps the release lists adapters return.
const MaxReleaseHistory = 20

var (
	// ErrNotFound is returned when a package or resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures, timeouts and unexpected statuses.
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is matched by [RateLimitError] via errors.Is.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = errors.New("malformed response")
)

// RateLimitError is returned for 403 and 429 responses.
type RateLimitError struct {
	Status     int
	RetryAfter int // seconds, 0 if the server did not say
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: status %d", ErrRateLimited, e.Status)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// NewHTTPClient creates an HTTP client with the standard upstream timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"ssh://git@github.com/", "https://github.com/",
)

// NormalizeRepoURL converts git+, git@, git:// and ssh forms of a
// repository URL to HTTPS and drops a trailing .git. Empty stays empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// IsGitHubURL reports whether u points at github.com.
func IsGitHubURL(u string) bool {
	return strings.Contains(u, "github.com")
}

// Release is one published version of a package.
type Release struct {
	Version string    `json:"version"`
	Date    time.Time `json:"date"`
}

// SortReleases orders releases newest first, keeping the input order for
// equal dates.
func SortReleases(releases []Release) {
	slices.SortStableFunc(releases, func(a, b Release) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
}

// LatestReleases returns at most [MaxReleaseHistory] releases, newest first.
func LatestReleases(releases []Release) []Release {
	SortReleases(releases)
	if len(releases) > MaxReleaseHistory {
		releases = releases[:MaxReleaseHistory]
	}
	return releases
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

// ParseTime parses the timestamp formats registries use. Values without a
// zone are taken as UTC. The zero time is returned when nothing matches.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// RegistryInfo is the maintenance-relevant metadata a package registry
// reports for one package. LastUpdate is zero when unknown.
type RegistryInfo struct {
	Name          string    `json:"name"`
	LastUpdate    time.Time `json:"lastUpdate"`
	TotalReleases int       `json:"totalReleases"`
	Releases      []Release `json:"releases"` // newest first, at most MaxReleaseHistory
	Maintainers   []string  `json:"maintainers"`
	RepositoryURL string    `json:"repositoryUrl,omitempty"`
	HomePage      string    `json:"homepage,omitempty"`
	Description   string    `json:"description,omitempty"`
	LatestVersion string    `json:"latestVersion,omitempty"`
}

// StringField returns v if it is a string, or the named field of v if it
// is an object. Registries are inconsistent about which form they use.
func StringField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

var pkgNameReplacer = strings.NewReplacer("_", "-", ".", "-")

// NormalizePkgName lower-cases a Python distribution name and folds runs
// of '_', '.' and '-' into a single '-' (PEP 503).
func NormalizePkgName(name string) string {
	s := pkgNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
