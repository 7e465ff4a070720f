// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// This package collects repository activity signals used to judge
// whether a dependency is still maintained: popularity, open issues,
// recent commits, contributors and where those contributors are.
//
// # Usage
//
//	client := github.NewClient(backend, token, 24*time.Hour)
//	sig, err := client.Signals(ctx, "https://github.com/pallets/flask")
//	if err != nil {
//	    return err
//	}
//	if sig == nil {
//	    // not a GitHub URL
//	}
//	fmt.Println("Stars:", sig.Stars, "Contributors:", sig.ContributorCount)
//
// # Requests
//
// One signal lookup issues up to eight requests: the repository, its
// first page of contributors (10), the profiles of the top 5 contributors
// and the last 30 commits. Only the repository request is required; the
// others degrade to empty values when they fail.
//
// # Authentication
//
// A token is optional but recommended. Without a token, the client is
// limited to 60 requests/hour. A 403 or 429 on any request aborts the
// lookup with an error matching [integrations.ErrRateLimited].
//
// # URL Extraction
//
// [RepoPath] accepts https, git+https, ssh and scp-style GitHub URLs, with
// or without a trailing .git.
package github
