package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	sberrors "github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/pipeline"
	"github.com/matzehuels/sbomlens/pkg/risk"
	"github.com/matzehuels/sbomlens/pkg/sbom"
	"github.com/matzehuels/sbomlens/pkg/store"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

type fakeAnalyzer struct {
	snap  *analysis.Snapshot
	err   error
	input pipeline.Input
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in pipeline.Input, _ pipeline.Options) (*analysis.Snapshot, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func score(n float64) *risk.Score {
	return &risk.Score{Numeric: n, Grade: risk.Grade(n), TrafficLight: risk.TrafficLight(n)}
}

func testSnapshot() *analysis.Snapshot {
	critical := vuln.Vulnerability{ID: "GHSA-1", Severity: vuln.SeverityCritical, Summary: "prototype pollution", AffectedPackage: "lodash"}
	low := vuln.Vulnerability{ID: "GHSA-2", Severity: vuln.SeverityLow, Summary: "redos", AffectedPackage: "ms"}
	root := "app@1.0.0"
	pkgs := []analysis.Package{
		{
			Package:         sbom.Package{ID: "lodash@4.17.20", Name: "lodash", Version: "4.17.20", Ecosystem: sbom.EcosystemNPM},
			Vulnerabilities: []vuln.Vulnerability{critical},
			RiskScore:       score(8.2),
			IsDirect:        true,
		},
		{
			Package:         sbom.Package{ID: "ms@2.0.0", Name: "ms", Version: "2.0.0", Ecosystem: sbom.EcosystemNPM},
			Vulnerabilities: []vuln.Vulnerability{low},
			RiskScore:       score(2.1),
		},
	}
	return &analysis.Snapshot{
		ID:              "snap-1",
		UploadedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FileName:        "bom.json",
		Format:          sbom.FormatCycloneDX,
		Packages:        pkgs,
		Vulnerabilities: []vuln.Vulnerability{critical, low},
		DependencyGraph: &analysis.Graph{
			Nodes: []analysis.GraphNode{
				{ID: "lodash@4.17.20", Name: "lodash", Version: "4.17.20", IsDirect: true},
				{ID: "ms@2.0.0", Name: "ms", Version: "2.0.0"},
			},
			Edges:  []analysis.GraphEdge{{Source: "lodash@4.17.20", Target: "ms@2.0.0"}},
			RootID: &root,
		},
		HasDependencyInfo: true,
	}
}

func newTestServer(t *testing.T, a Analyzer) (*Server, *store.Store) {
	t.Helper()
	st := store.New()
	return New(st, a, pipeline.Options{}, nil), st
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, field, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeAnalyzer{})
	w := do(t, s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[healthResponse](t, w).Status)
}

func TestUpload(t *testing.T) {
	t.Run("stores the snapshot", func(t *testing.T) {
		a := &fakeAnalyzer{snap: testSnapshot()}
		s, st := newTestServer(t, a)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "sbom", `C:\Users\me\bom.json`, []byte(`{}`)))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[uploadResponse](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "snap-1", resp.ID)
		assert.Equal(t, sbom.FormatCycloneDX, resp.Format)
		assert.Equal(t, 2, resp.PackageCount)
		assert.Equal(t, msgUploadSuccess, resp.Message)

		assert.Equal(t, "bom.json", a.input.FileName)
		assert.Equal(t, []byte(`{}`), a.input.Data)
		assert.Same(t, a.snap, st.Current())
	})

	t.Run("missing file", func(t *testing.T) {
		s, _ := newTestServer(t, &fakeAnalyzer{snap: testSnapshot()})

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "other", "bom.json", []byte(`{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, msgNoFile, decode[errorResponse](t, w).Error)
	})

	t.Run("not multipart", func(t *testing.T) {
		s, _ := newTestServer(t, &fakeAnalyzer{snap: testSnapshot()})
		w := do(t, s, http.MethodPost, "/api/upload")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, msgNoFile, decode[errorResponse](t, w).Error)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid json", sberrors.New(sberrors.ErrCodeInvalidJSON, "bad"), http.StatusBadRequest, msgInvalidJSON},
		{"unsupported", sberrors.New(sberrors.ErrCodeUnsupportedFormat, "bad"), http.StatusBadRequest, msgUnsupported},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError, msgProcessFailed},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			prev := testSnapshot()
			s, st := newTestServer(t, &fakeAnalyzer{err: tc.err})
			st.Replace(prev)

			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, uploadRequest(t, "sbom", "bom.json", []byte(`nope`)))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, decode[errorResponse](t, w).Error)
			assert.Same(t, prev, st.Current(), "failed upload must keep the previous snapshot")
		})
	}
}

func TestNoAnalysis(t *testing.T) {
	s, _ := newTestServer(t, &fakeAnalyzer{})
	for _, path := range []string{
		"/api/stats",
		"/api/packages",
		"/api/packages/lodash@4.17.20",
		"/api/cves",
		"/api/dependencies",
		"/api/dependencies.dot",
	} {
		t.Run(path, func(t *testing.T) {
			w := do(t, s, http.MethodGet, path)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, msgNoAnalysis, decode[errorResponse](t, w).Error)
		})
	}
}

func TestStats(t *testing.T) {
	s, st := newTestServer(t, &fakeAnalyzer{})
	st.Replace(testSnapshot())

	w := do(t, s, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[statsResponse](t, w)
	assert.Equal(t, "snap-1", resp.ID)
	assert.Equal(t, "bom.json", resp.FileName)
	assert.Equal(t, 2, resp.Summary.TotalPackages)
	assert.Equal(t, 2, resp.Summary.TotalVulnerabilities)
	assert.Equal(t, 1, resp.Summary.SeverityBreakdown[vuln.SeverityCritical])
}

func TestPackages(t *testing.T) {
	s, st := newTestServer(t, &fakeAnalyzer{})
	st.Replace(testSnapshot())

	t.Run("sorted by risk", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/packages?sortBy=risk&sortOrder=desc")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[packagesResponse](t, w)
		require.Equal(t, 2, resp.Total)
		assert.Equal(t, "lodash", resp.Packages[0].Name)
		assert.Equal(t, "ms", resp.Packages[1].Name)
	})

	t.Run("filtered by severity", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/packages?severity=LOW")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[packagesResponse](t, w)
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, "ms", resp.Packages[0].Name)
	})

	t.Run("invalid query", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/packages?sortBy=color")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPackage(t *testing.T) {
	s, st := newTestServer(t, &fakeAnalyzer{})
	st.Replace(testSnapshot())

	t.Run("found", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/packages/lodash@4.17.20")
		require.Equal(t, http.StatusOK, w.Code)

		pkg := decode[analysis.Package](t, w)
		assert.Equal(t, "lodash", pkg.Name)
		assert.Len(t, pkg.Vulnerabilities, 1)
	})

	t.Run("missing", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/packages/left-pad@1.0.0")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, msgNotFound, decode[errorResponse](t, w).Error)
	})
}

func TestCVEs(t *testing.T) {
	s, st := newTestServer(t, &fakeAnalyzer{})
	st.Replace(testSnapshot())

	w := do(t, s, http.MethodGet, "/api/cves?search=redos")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[cvesResponse](t, w)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "GHSA-2", resp.Vulnerabilities[0].ID)

	w = do(t, s, http.MethodGet, "/api/cves?severity=SEVERE")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDependencies(t *testing.T) {
	t.Run("graph", func(t *testing.T) {
		s, st := newTestServer(t, &fakeAnalyzer{})
		st.Replace(testSnapshot())

		w := do(t, s, http.MethodGet, "/api/dependencies")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[dependenciesResponse](t, w)
		assert.True(t, resp.HasDependencyInfo)
		require.NotNil(t, resp.Graph)
		assert.Len(t, resp.Graph.Nodes, 2)
		assert.Len(t, resp.Graph.Edges, 1)
	})

	t.Run("dot", func(t *testing.T) {
		s, st := newTestServer(t, &fakeAnalyzer{})
		st.Replace(testSnapshot())

		w := do(t, s, http.MethodGet, "/api/dependencies.dot")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/vnd.graphviz"))
		assert.Contains(t, w.Body.String(), "digraph")
		assert.Contains(t, w.Body.String(), `"lodash@4.17.20" -> "ms@2.0.0"`)
	})

	t.Run("no dependency info", func(t *testing.T) {
		s, st := newTestServer(t, &fakeAnalyzer{})
		snap := testSnapshot()
		snap.DependencyGraph = nil
		snap.HasDependencyInfo = false
		st.Replace(snap)

		w := do(t, s, http.MethodGet, "/api/dependencies")
		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decode[dependenciesResponse](t, w)
		assert.False(t, resp.HasDependencyInfo)
		assert.Equal(t, msgNoDependencies, resp.Error)
	})
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, &fakeAnalyzer{})

	w := do(t, s, http.MethodOptions, "/api/upload")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
