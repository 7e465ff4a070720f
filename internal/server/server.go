// Package server implements the sbomlens HTTP API.
//
// The API analyzes one uploaded SBOM at a time. A successful upload replaces
// the current snapshot in the [store.Store]; every read endpoint answers from
// whatever snapshot is current when the request arrives.
//
//	POST /api/upload             multipart field "sbom"
//	GET  /api/stats              summary statistics
//	GET  /api/packages           filtered package list
//	GET  /api/packages/{id}      one analyzed package
//	GET  /api/cves               filtered vulnerability list
//	GET  /api/dependencies       dependency graph (JSON)
//	GET  /api/dependencies.dot   dependency graph (Graphviz DOT)
//	GET  /api/dependencies.svg   dependency graph (SVG)
//	GET  /healthz                liveness
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/pipeline"
	"github.com/matzehuels/sbomlens/pkg/store"
)

const (
	// MaxUploadSize is the largest accepted SBOM file.
	MaxUploadSize = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// Analyzer runs the analysis pipeline. [*pipeline.Runner] implements it.
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input, opts pipeline.Options) (*analysis.Snapshot, error)
}

// Server serves the HTTP API over a snapshot store.
type Server struct {
	store    *store.Store
	analyzer Analyzer
	opts     pipeline.Options
	logger   *log.Logger
}

// New creates a server. If logger is nil, output is discarded.
func New(s *store.Store, a Analyzer, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{store: s, analyzer: a, opts: opts, logger: logger}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/stats", s.handleStats)
		r.Get("/packages", s.handlePackages)
		r.Get("/packages/{id}", s.handlePackage)
		r.Get("/cves", s.handleCVEs)
		r.Get("/dependencies", s.handleDependencies)
		r.Get("/dependencies.dot", s.handleDependenciesDOT)
		r.Get("/dependencies.svg", s.handleDependenciesSVG)
	})
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func pipelineInput(name string, data []byte) pipeline.Input {
	return pipeline.Input{FileName: name, Data: data}
}
