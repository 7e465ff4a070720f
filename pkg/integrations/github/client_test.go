package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/sbomlens/pkg/integrations"
)

func testClient(t *testing.T, serverURL, token string) *Client {
	t.Helper()
	return &Client{
		Client:  integrations.NewClient(nil, "github:", time.Hour, headers(token)),
		baseURL: serverURL,
	}
}

func TestRepoPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/pallets/flask", "pallets/flask"},
		{"https://github.com/pallets/flask.git", "pallets/flask"},
		{"git+https://github.com/lodash/lodash.git", "lodash/lodash"},
		{"https://github.com/owner/repo/tree/main/sub", "owner/repo"},
		{"git@github.com:owner/repo.git", "owner/repo"},
		{"git@github.com:owner/repo", "owner/repo"},
		{"https://gitlab.com/owner/repo", ""},
		{"https://github.com/owner", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RepoPath(tt.url); got != tt.want {
			t.Errorf("RepoPath(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func newGitHubServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) }
}

func TestClient_Signals(t *testing.T) {
	server := newGitHubServer(t, map[string]http.HandlerFunc{
		"/repos/pallets/flask": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "token secret" {
				t.Errorf("Authorization = %q", got)
			}
			if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
				t.Errorf("Accept = %q", got)
			}
			w.Write([]byte(`{"full_name":"pallets/flask","stargazers_count":65000,"forks_count":16000,
				"open_issues_count":12,"pushed_at":"2024-05-01T10:00:00Z","created_at":"2010-04-06T11:11:59Z",
				"archived":false}`))
		},
		"/repos/pallets/flask/contributors": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("per_page") != "10" {
				t.Errorf("per_page = %q", r.URL.Query().Get("per_page"))
			}
			w.Write([]byte(`[{"login":"a"},{"login":"b"},{"login":"c"},{"login":"d"},{"login":"e"},{"login":"f"}]`))
		},
		"/users/a": respond(`{"location":"Vienna"}`),
		"/users/b": respond(`{"location":"Berlin"}`),
		"/users/c": respond(`{"location":"Vienna"}`),
		"/users/d": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"/users/e": respond(`{"location":""}`),
		"/users/f": func(w http.ResponseWriter, r *http.Request) { t.Error("only the top 5 contributors are profiled") },
		"/repos/pallets/flask/commits": respond(`[{"commit":{"committer":{"date":"2024-04-30T09:00:00Z"}}},
			{"commit":{"committer":{"date":"2024-04-01T09:00:00Z"}}}]`),
	})
	defer server.Close()

	sig, err := testClient(t, server.URL, "secret").Signals(context.Background(), "git+https://github.com/pallets/flask.git")
	if err != nil {
		t.Fatalf("Signals failed: %v", err)
	}

	if sig.Stars != 65000 || sig.Forks != 16000 || sig.OpenIssues != 12 {
		t.Errorf("unexpected counts %+v", sig)
	}
	if sig.ContributorCount != 6 {
		t.Errorf("ContributorCount = %d", sig.ContributorCount)
	}
	if len(sig.ContributorLocations) != 2 || sig.ContributorLocations[0] != "Vienna" || sig.ContributorLocations[1] != "Berlin" {
		t.Errorf("ContributorLocations = %v", sig.ContributorLocations)
	}
	if sig.RecentCommitCount != 2 {
		t.Errorf("RecentCommitCount = %d", sig.RecentCommitCount)
	}
	if sig.LastCommitDate == nil || !sig.LastCommitDate.Equal(time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("LastCommitDate = %v", sig.LastCommitDate)
	}
	if sig.LastPush == nil || sig.LastPush.Year() != 2024 {
		t.Errorf("LastPush = %v", sig.LastPush)
	}
}

func TestClient_SignalsOptionalCallsDegrade(t *testing.T) {
	server := newGitHubServer(t, map[string]http.HandlerFunc{
		"/repos/o/r": respond(`{"full_name":"o/r","stargazers_count":3}`),
	})
	defer server.Close()

	sig, err := testClient(t, server.URL, "").Signals(context.Background(), "https://github.com/o/r")
	if err != nil {
		t.Fatalf("Signals failed: %v", err)
	}
	if sig.ContributorCount != 0 || sig.RecentCommitCount != 0 || sig.LastCommitDate != nil {
		t.Errorf("expected empty optional signals, got %+v", sig)
	}
	if sig.ContributorLocations == nil {
		t.Error("locations should be an empty list, not nil")
	}
}

func TestClient_SignalsRateLimited(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		server := newGitHubServer(t, map[string]http.HandlerFunc{
			"/repos/o/r":              respond(`{"full_name":"o/r"}`),
			"/repos/o/r/contributors": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) },
		})

		sig, err := testClient(t, server.URL, "").Signals(context.Background(), "https://github.com/o/r")
		if !errors.Is(err, integrations.ErrRateLimited) {
			t.Errorf("status %d: expected ErrRateLimited, got %v", status, err)
		}
		if sig != nil {
			t.Errorf("status %d: expected nil signals", status)
		}
		server.Close()
	}
}

func TestClient_SignalsNotGitHub(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	sig, err := testClient(t, server.URL, "").Signals(context.Background(), "https://bitbucket.org/o/r")
	if sig != nil || err != nil {
		t.Errorf("got %v, %v", sig, err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", calls.Load())
	}
}

func TestClient_SignalsRepoNotFound(t *testing.T) {
	server := newGitHubServer(t, nil)
	defer server.Close()

	_, err := testClient(t, server.URL, "").Signals(context.Background(), "https://github.com/o/missing")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHeaders(t *testing.T) {
	if _, ok := headers("")["Authorization"]; ok {
		t.Error("no Authorization header without a token")
	}
	if got := headers("abc")["Authorization"]; got != "token abc" {
		t.Errorf("Authorization = %q", got)
	}
}
