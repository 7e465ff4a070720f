package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
)

const DefaultBaseURL = "https://search.maven.org/solrsearch/select"

// Client provides access to the Maven Central search API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Maven Central client whose responses are cached in
// backend for cacheTTL. A nil backend disables caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "maven:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// FetchArtifact retrieves the release history of a Java artifact.
//
// The coordinate parameter must be in the format "groupId:artifactId";
// anything after a second colon (a version) is ignored.
//
// Returns:
//   - [integrations.ErrNotFound] if Maven Central lists no versions
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - an error if the coordinate is malformed
//
// If refresh is true, the cache is bypassed.
func (c *Client) FetchArtifact(ctx context.Context, coordinate string, refresh bool) (*integrations.RegistryInfo, error) {
	groupID, artifactID, err := parseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}

	var info integrations.RegistryInfo
	err = c.Cached(ctx, groupID+":"+artifactID, refresh, &info, func() error {
		return c.fetch(ctx, groupID, artifactID, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchPackage is FetchArtifact under the name the other registry
// clients use.
func (c *Client) FetchPackage(ctx context.Context, coordinate string, refresh bool) (*integrations.RegistryInfo, error) {
	return c.FetchArtifact(ctx, coordinate, refresh)
}

func (c *Client) fetch(ctx context.Context, groupID, artifactID string, info *integrations.RegistryInfo) error {
	query := fmt.Sprintf("g:%q AND a:%q", groupID, artifactID)
	url := fmt.Sprintf("%s?q=%s&rows=%d&wt=json&core=gav",
		c.baseURL, integrations.URLEncode(query), integrations.MaxReleaseHistory)

	var resp searchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return err
	}
	if len(resp.Response.Docs) == 0 {
		return fmt.Errorf("%w: maven artifact %s:%s", integrations.ErrNotFound, groupID, artifactID)
	}

	var releases []integrations.Release
	for _, doc := range resp.Response.Docs {
		if doc.Timestamp <= 0 {
			continue
		}
		releases = append(releases, integrations.Release{
			Version: doc.Version,
			Date:    time.UnixMilli(doc.Timestamp).UTC(),
		})
	}
	releases = integrations.LatestReleases(releases)

	*info = integrations.RegistryInfo{
		Name:          groupID + ":" + artifactID,
		TotalReleases: len(releases),
		Releases:      releases,
		Maintainers:   []string{},
	}
	if len(releases) > 0 {
		info.LastUpdate = releases[0].Date
		info.LatestVersion = releases[0].Version
	}
	return nil
}

// Coordinate builds "groupId:artifactId" from a package's group and name.
// A name containing a colon is returned as is. It returns "" when no
// group is known.
func Coordinate(group, name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	if group == "" || name == "" {
		return ""
	}
	return group + ":" + name
}

func parseCoordinate(coord string) (string, string, error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid maven coordinate: %s", coord)
	}
	return parts[0], parts[1], nil
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	GroupID    string `json:"g"`
	ArtifactID string `json:"a"`
	Version    string `json:"v"`
	Timestamp  int64  `json:"timestamp"`
}
