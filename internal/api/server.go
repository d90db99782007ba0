// Package api exposes the pipeline and graph store over HTTP.
//
// Endpoints (all JSON):
//
//	GET    /healthz               liveness probe
//	POST   /api/v1/expand         expand a term into a graph document
//	POST   /api/v1/layout         relax a graph document's positions
//	GET    /api/v1/graphs         list stored graphs
//	GET    /api/v1/graphs/{id}    fetch a stored graph
//	PUT    /api/v1/graphs/{id}    store a graph
//	DELETE /api/v1/graphs/{id}    delete a stored graph
//
// The graph endpoints require a store; without one they answer 503.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// GraphStore is the persistence surface the server needs.
// [store.MongoStore] implements it; tests use an in-memory fake.
type GraphStore interface {
	SaveGraph(ctx context.Context, id, name string, g *graph.Graph) error
	LoadGraph(ctx context.Context, id string) (*graph.Graph, error)
	ListGraphs(ctx context.Context) ([]store.GraphRecord, error)
	DeleteGraph(ctx context.Context, id string) error
}

// Server is the wordmiro HTTP API.
type Server struct {
	router *chi.Mux
	runner *pipeline.Runner
	store  GraphStore
	logger *log.Logger
}

// NewServer wires the router. The store may be nil (CLI-style stateless
// deployments); graph persistence endpoints then answer 503.
func NewServer(runner *pipeline.Runner, graphs GraphStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		runner: runner,
		store:  graphs,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/expand", s.handleExpand)
		r.Post("/layout", s.handleLayout)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Get("/{id}", s.handleGetGraph)
			r.Put("/{id}", s.handlePutGraph)
			r.Delete("/{id}", s.handleDeleteGraph)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
