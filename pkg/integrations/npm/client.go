package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
)

const DefaultBaseURL = "https://registry.npmjs.org"

type Client struct {
	*integrations.Client
	baseURL string
}

func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*integrations.RegistryInfo, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return nil, fmt.Errorf("%w: empty npm package name", integrations.ErrNotFound)
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
	var data packument
	if err := c.Get(ctx, c.baseURL+"/"+escapeName(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	var releases []integrations.Release
	total := 0
	for version, raw := range data.Time {
		if version == "created" || version == "modified" {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		total++
		if t, ok := integrations.ParseTime(s); ok {
			releases = append(releases, integrations.Release{Version: version, Date: t})
		}
	}
	releases = integrations.LatestReleases(releases)

	lastUpdate, _ := integrations.ParseTime(integrations.StringField(data.Time["modified"], ""))
	if lastUpdate.IsZero() && len(releases) > 0 {
		lastUpdate = releases[0].Date
	}

	maintainers := make([]string, 0, len(data.Maintainers))
	for _, m := range data.Maintainers {
		name := integrations.StringField(m, "name")
		if name == "" {
			name = integrations.StringField(m, "email")
		}
		if name != "" {
			maintainers = append(maintainers, name)
		}
	}

	*info = integrations.RegistryInfo{
		Name:          data.Name,
		LastUpdate:    lastUpdate,
		TotalReleases: total,
		Releases:      releases,
		Maintainers:   maintainers,
		RepositoryURL: integrations.NormalizeRepoURL(integrations.StringField(data.Repository, "url")),
		HomePage:      integrations.StringField(data.HomePage, ""),
		Description:   integrations.StringField(data.Description, ""),
		LatestVersion: data.DistTags.Latest,
	}
	return nil
}

func escapeName(pkg string) string {
	return strings.ReplaceAll(pkg, "/", "%2f")
}

type packument struct {
	Name        string         `json:"name"`
	Description any            `json:"description"`
	HomePage    any            `json:"homepage"`
	Repository  any            `json:"repository"`
	Maintainers []any          `json:"maintainers"`
	Time        map[string]any `json:"time"`
	DistTags    struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
}
