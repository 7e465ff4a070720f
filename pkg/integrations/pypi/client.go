package pypi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
)

const DefaultBaseURL = "https://pypi.org/pypi"

var repositoryKeys = []string{"Repository", "Source", "GitHub", "Source Code"}

type Client struct {
	*integrations.Client
	baseURL string
}

func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*integrations.RegistryInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if pkg == "" {
		return nil, fmt.Errorf("%w: empty pypi package name", integrations.ErrNotFound)
	}

	var info integrations.RegistryInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *integrations.RegistryInfo) error {
	var data apiResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.URLEncode(pkg)+"/json", &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	var releases []integrations.Release
	for version, files := range data.Releases {
		if len(files) == 0 {
			continue
		}
		if t, ok := integrations.ParseTime(files[0].UploadTime); ok {
			releases = append(releases, integrations.Release{Version: version, Date: t})
		}
	}
	total := len(releases)
	releases = integrations.LatestReleases(releases)

	var lastUpdate time.Time
	if len(releases) > 0 {
		lastUpdate = releases[0].Date
	}

	var maintainers []string
	if m := firstNonEmpty(data.Info.Maintainer, data.Info.Author); m != "" {
		maintainers = []string{m}
	}

	repo := data.Info.HomePage
	for _, key := range repositoryKeys {
		if u := integrations.StringField(data.Info.ProjectURLs[key], ""); u != "" {
			repo = u
			break
		}
	}

	*info = integrations.RegistryInfo{
		Name:          data.Info.Name,
		LastUpdate:    lastUpdate,
		TotalReleases: total,
		Releases:      releases,
		Maintainers:   maintainers,
		RepositoryURL: repo,
		HomePage:      data.Info.HomePage,
		Description:   data.Info.Summary,
		LatestVersion: data.Info.Version,
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type apiInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Summary     string         `json:"summary"`
	HomePage    string         `json:"home_page"`
	Author      string         `json:"author"`
	Maintainer  string         `json:"maintainer"`
	ProjectURLs map[string]any `json:"project_urls"`
}

type releaseFile struct {
	UploadTime string `json:"upload_time"`
}
