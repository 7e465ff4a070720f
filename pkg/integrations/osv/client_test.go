package osv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/sbomlens/pkg/cache"
	"github.com/matzehuels/sbomlens/pkg/integrations"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

const lodashResponse = `{"vulns":[
  {"id":"GHSA-1","aliases":["CVE-2021-1"],"summary":"Prototype pollution",
   "published":"2021-02-15T11:00:00Z",
   "severity":[{"type":"CVSS_V3","score":"CVSS:3.1/AV:N/AC:L"},{"type":"CVSS_V2","score":"7.5"}],
   "affected":[{"ranges":[{"events":[{"introduced":"0"}]},{"events":[{"introduced":"0"},{"fixed":"4.17.21"}]}]}],
   "references":[{"type":"ADVISORY","url":"https://example.test/a"}]},
  {"id":"GHSA-2","database_specific":{"severity":"MODERATE"}},
  {"id":"GHSA-3","severity":[{"type":"CVSS_V3","score":"9.8"},{"type":"CVSS_V2","score":"5.0"}]},
  {"id":"GHSA-4","database_specific":{"severity":3}}
]}`

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		Client:  integrations.NewClient(c, "osv:", time.Hour, nil),
		baseURL: serverURL,
	}
}

func TestClient_Query(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/v1/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Package.Name != "lodash" || req.Package.Ecosystem != "npm" || req.Version != "4.17.20" {
			t.Errorf("unexpected payload %+v", req)
		}
		w.Write([]byte(lodashResponse))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	q := vuln.Query{Ecosystem: "npm", Name: "lodash", Version: "4.17.20"}

	vulns, err := c.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(vulns) != 4 {
		t.Fatalf("expected 4 vulns, got %d", len(vulns))
	}

	first := vulns[0]
	if first.Severity != vuln.SeverityHigh {
		t.Errorf("vector string must be skipped for the numeric v2 score, got %s", first.Severity)
	}
	if first.FixedVersion != "4.17.21" {
		t.Errorf("fixedVersion = %q", first.FixedVersion)
	}
	if first.AffectedPackage != "lodash" {
		t.Errorf("affectedPackage = %q", first.AffectedPackage)
	}
	if first.Published == nil || first.Published.Year() != 2021 {
		t.Errorf("published = %v", first.Published)
	}
	if len(first.References) != 1 || first.References[0].Type != "ADVISORY" {
		t.Errorf("references = %+v", first.References)
	}

	if vulns[1].Severity != vuln.SeverityMedium {
		t.Errorf("MODERATE should map to MEDIUM, got %s", vulns[1].Severity)
	}
	if vulns[1].Summary != vuln.DefaultSummary {
		t.Errorf("summary default = %q", vulns[1].Summary)
	}
	if vulns[2].Severity != vuln.SeverityCritical {
		t.Errorf("v3 score should win, got %s", vulns[2].Severity)
	}
	if vulns[3].Severity != vuln.SeverityUnknown {
		t.Errorf("non-string label should be UNKNOWN, got %s", vulns[3].Severity)
	}

	// Second query is served from cache.
	if _, err := c.Query(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", hits.Load())
	}
}

func TestClient_QueryUnmappedEcosystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for unmapped ecosystem")
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	for _, eco := range []string{"unknown", "container", "CocoaPods", ""} {
		vulns, err := c.Query(context.Background(), vuln.Query{Ecosystem: eco, Name: "x", Version: "1"})
		if err != nil || vulns != nil {
			t.Errorf("%q: got %v, %v", eco, vulns, err)
		}
	}
}

func TestClient_QueryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	_, err := c.Query(context.Background(), vuln.Query{Ecosystem: "PyPI", Name: "x", Version: "1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_QueryNoVulns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	vulns, err := c.Query(context.Background(), vuln.Query{Ecosystem: "golang", Name: "x", Version: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vulns) != 0 {
		t.Errorf("expected none, got %v", vulns)
	}
}

func TestEcosystem(t *testing.T) {
	tests := map[string]string{"pypi": "PyPI", "composer": "Packagist", "golang": "Go", "crates.io": "crates.io"}
	for in, want := range tests {
		if got, ok := Ecosystem(in); !ok || got != want {
			t.Errorf("Ecosystem(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := Ecosystem("Swift"); ok {
		t.Error("Swift is not an OSV ecosystem here")
	}
}
