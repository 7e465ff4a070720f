package github

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
)

const (
	DefaultBaseURL = "https://api.github.com"

	contributorsPerPage = 10
	profiledContributor = 5
	commitsPerPage      = 30
)

var repoPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([^/]+/[^/]+?)(?:\.git)?(?:/|$)`),
	regexp.MustCompile(`github\.com:([^/]+/[^/]+?)(?:\.git)?$`),
}

// Client provides access to the GitHub API for repository signals.
// It handles HTTP requests with caching and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. Pass an empty token to use
// unauthenticated requests (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers(token)),
		baseURL: DefaultBaseURL,
	}
}

func headers(token string) map[string]string {
	h := map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": "sbomlens",
	}
	if token != "" {
		h["Authorization"] = "token " + token
	}
	return h
}

// RepoPath extracts "owner/repo" from a GitHub URL, or "" if url does not
// point at a GitHub repository.
func RepoPath(url string) string {
	for _, re := range repoPathPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return strings.TrimSuffix(m[1], ".git")
		}
	}
	return ""
}

// Signals fetches activity signals for the repository at repoURL. It
// returns (nil, nil) without any request when repoURL is not a GitHub
// repository URL.
func (c *Client) Signals(ctx context.Context, repoURL string) (*Signals, error) {
	return c.signals(ctx, repoURL, false)
}

// Refresh is Signals without reading the cache.
func (c *Client) Refresh(ctx context.Context, repoURL string) (*Signals, error) {
	return c.signals(ctx, repoURL, true)
}

func (c *Client) signals(ctx context.Context, repoURL string, refresh bool) (*Signals, error) {
	path := RepoPath(repoURL)
	if path == "" {
		return nil, nil
	}

	var s Signals
	err := c.Cached(ctx, strings.ToLower(path), refresh, &s, func() error {
		return c.fetch(ctx, path, &s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) fetch(ctx context.Context, path string, s *Signals) error {
	var repo repoResponse
	if err := c.Get(ctx, c.baseURL+"/repos/"+path, &repo); err != nil {
		return err
	}

	var contributors []contributor
	if err := c.Get(ctx, c.url(path, "contributors", contributorsPerPage), &contributors); err != nil {
		if fatal(ctx, err) {
			return err
		}
		contributors = nil
	}
	locations, err := c.locations(ctx, contributors)
	if err != nil {
		return err
	}

	var commits []commit
	if err := c.Get(ctx, c.url(path, "commits", commitsPerPage), &commits); err != nil {
		if fatal(ctx, err) {
			return err
		}
		commits = nil
	}

	*s = Signals{
		FullName:             repo.FullName,
		Description:          repo.Description,
		Stars:                repo.Stars,
		Forks:                repo.Forks,
		OpenIssues:           repo.OpenIssues,
		LastPush:             repo.PushedAt,
		CreatedAt:            repo.CreatedAt,
		Archived:             repo.Archived,
		Disabled:             repo.Disabled,
		ContributorCount:     len(contributors),
		ContributorLocations: locations,
		RecentCommitCount:    len(commits),
	}
	if len(commits) > 0 {
		s.LastCommitDate = commits[0].Commit.Committer.Date
	}
	return nil
}

// locations returns the distinct profile locations of the top
// contributors in contributor order.
func (c *Client) locations(ctx context.Context, contributors []contributor) ([]string, error) {
	var locs []string
	for _, ctr := range lo.Slice(contributors, 0, profiledContributor) {
		if ctr.Login == "" {
			continue
		}
		var u user
		if err := c.Get(ctx, c.baseURL+"/users/"+ctr.Login, &u); err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			continue
		}
		if u.Location != "" {
			locs = append(locs, u.Location)
		}
	}
	return lo.Uniq(locs), nil
}

// fatal reports whether err must abort the whole lookup. Everything but
// rate limiting and an expired context degrades to an empty value.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, integrations.ErrRateLimited)
}

func (c *Client) url(path, resource string, perPage int) string {
	return c.baseURL + "/repos/" + path + "/" + resource + "?per_page=" + strconv.Itoa(perPage)
}
