package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/buildinfo"
	sberrors "github.com/matzehuels/sbomlens/pkg/errors"
	"github.com/matzehuels/sbomlens/pkg/render"
	"github.com/matzehuels/sbomlens/pkg/sbom"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// Error messages shown to API clients.
const (
	msgNoAnalysis     = "No SBOM uploaded. Please upload an SBOM file first."
	msgNoFile         = "No file uploaded"
	msgInvalidJSON    = "Invalid JSON file"
	msgUnsupported    = "Unsupported SBOM format. Please upload CycloneDX or SPDX JSON."
	msgProcessFailed  = "Failed to process SBOM file"
	msgTooLarge       = "File too large"
	msgNotFound       = "Package not found"
	msgNoDependencies = "No dependency information available in this SBOM."
	msgUploadSuccess  = "SBOM uploaded and analyzed successfully"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Success      bool        `json:"success"`
	ID           string      `json:"id"`
	Format       sbom.Format `json:"format"`
	PackageCount int         `json:"packageCount"`
	Message      string      `json:"message"`
}

type statsResponse struct {
	ID         string           `json:"id"`
	UploadedAt time.Time        `json:"uploadedAt"`
	FileName   string           `json:"fileName"`
	Format     sbom.Format      `json:"format"`
	Summary    analysis.Summary `json:"summary"`
}

type packagesResponse struct {
	Total    int                       `json:"total"`
	Packages []analysis.PackageSummary `json:"packages"`
}

type cvesResponse struct {
	Total           int                  `json:"total"`
	Vulnerabilities []vuln.Vulnerability `json:"vulnerabilities"`
}

type dependenciesResponse struct {
	HasDependencyInfo bool            `json:"hasDependencyInfo"`
	Graph             *analysis.Graph `json:"graph,omitempty"`
	Error             string          `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// current returns the stored snapshot or answers 404.
func (s *Server) current(w http.ResponseWriter) (*analysis.Snapshot, bool) {
	snap := s.store.Current()
	if snap == nil {
		writeError(w, http.StatusNotFound, msgNoAnalysis)
		return nil, false
	}
	return snap, true
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("sbom")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	name, err := sberrors.ValidateFileName(header.Filename)
	if err != nil {
		writeError(w, sberrors.HTTPStatus(err), sberrors.UserMessage(err))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	if len(data) > MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	snap, err := s.analyzer.Analyze(r.Context(), pipelineInput(name, data), s.opts)
	if err != nil {
		status, msg := uploadError(err)
		s.logger.Warn("upload rejected", "file", name, "error", err)
		writeError(w, status, msg)
		return
	}

	s.store.Replace(snap)
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:      true,
		ID:           snap.ID,
		Format:       snap.Format,
		PackageCount: len(snap.Packages),
		Message:      msgUploadSuccess,
	})
}

// uploadError maps a pipeline error to the status and message of the
// upload response.
func uploadError(err error) (int, string) {
	switch sberrors.GetCode(err) {
	case sberrors.ErrCodeInvalidJSON:
		return http.StatusBadRequest, msgInvalidJSON
	case sberrors.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest, msgUnsupported
	case sberrors.ErrCodeInvalidInput:
		return http.StatusBadRequest, sberrors.UserMessage(err)
	default:
		return http.StatusInternalServerError, msgProcessFailed
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		ID:         snap.ID,
		UploadedAt: snap.UploadedAt,
		FileName:   snap.FileName,
		Format:     snap.Format,
		Summary:    analysis.Summarize(snap),
	})
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := analysis.PackageQuery{
		Search:    q.Get("search"),
		Severity:  q.Get("severity"),
		RiskLevel: q.Get("riskLevel"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if err := query.Validate(); err != nil {
		writeError(w, sberrors.HTTPStatus(err), sberrors.UserMessage(err))
		return
	}

	pkgs := analysis.FilterPackages(snap.Packages, query)
	out := make([]analysis.PackageSummary, len(pkgs))
	for i := range pkgs {
		out[i] = pkgs[i].Summary()
	}
	writeJSON(w, http.StatusOK, packagesResponse{Total: len(out), Packages: out})
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	pkg, found := snap.Package(chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleCVEs(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	query := analysis.VulnQuery{
		Severity: r.URL.Query().Get("severity"),
		Search:   r.URL.Query().Get("search"),
	}
	if err := query.Validate(); err != nil {
		writeError(w, sberrors.HTTPStatus(err), sberrors.UserMessage(err))
		return
	}

	vulns := analysis.FilterVulnerabilities(snap.Vulnerabilities, query)
	writeJSON(w, http.StatusOK, cvesResponse{Total: len(vulns), Vulnerabilities: vulns})
}

// graph returns the dependency graph or answers 404.
func (s *Server) graph(w http.ResponseWriter) (*analysis.Graph, bool) {
	snap, ok := s.current(w)
	if !ok {
		return nil, false
	}
	if !snap.HasDependencyInfo || snap.DependencyGraph == nil {
		writeJSON(w, http.StatusNotFound, dependenciesResponse{Error: msgNoDependencies})
		return nil, false
	}
	return snap.DependencyGraph, true
}

func (s *Server) handleDependencies(w http.ResponseWriter, _ *http.Request) {
	g, ok := s.graph(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dependenciesResponse{HasDependencyInfo: true, Graph: g})
}

func (s *Server) handleDependenciesDOT(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = io.WriteString(w, render.ToDOT(g, render.Options{Detailed: r.URL.Query().Has("detailed")}))
}

func (s *Server) handleDependenciesSVG(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w)
	if !ok {
		return
	}
	svg, err := render.RenderSVG(r.Context(), render.ToDOT(g, render.Options{Detailed: r.URL.Query().Has("detailed")}))
	if err != nil {
		s.logger.Error("render dependency graph", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render dependency graph")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
