// Package pypi provides an HTTP client for the Python Package Index JSON
// API (https://pypi.org/pypi/{name}/json).
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "fastapi", false) // false = use cache
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.TotalReleases, info.RepositoryURL)
//
// # Releases
//
// Only releases with at least one uploaded file count. Each is dated by
// the upload time of its first file, so yanked placeholder versions
// without artifacts do not affect the release cadence.
//
// # Repository URL
//
// The repository is taken from project_urls, trying the keys
// "Repository", "Source", "GitHub" and "Source Code" in that order, and
// falls back to the home page.
//
// Package names are normalized per PEP 503 before lookup.
package pypi
