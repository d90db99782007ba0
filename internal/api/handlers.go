package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DELAxGithub/wordmiro/pkg/errors"
	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// expandRequest asks the server to expand one term within a graph.
// The graph document is optional; omitting it expands into a fresh graph.
type expandRequest struct {
	Term    string          `json:"term"`
	Graph   *graph.Document `json:"graph,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
	layoutParams
}

// layoutRequest relaxes an existing graph document.
type layoutRequest struct {
	Graph graph.Document `json:"graph"`
	layoutParams
}

type layoutParams struct {
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	K          float64 `json:"k,omitempty"`
}

// graphResponse is the shared response shape for expand and layout.
type graphResponse struct {
	Graph     graph.Document     `json:"graph"`
	GraphHash string             `json:"graph_hash,omitempty"`
	Added     []string           `json:"added,omitempty"`
	Rejected  []string           `json:"rejected,omitempty"`
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

type putGraphRequest struct {
	Name  string         `json:"name,omitempty"`
	Graph graph.Document `json:"graph"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if err := errors.ValidateTerm(req.Term); err != nil {
		writeError(w, err)
		return
	}

	g, err := importOrNew(req.Graph)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), g, pipeline.Options{
		Term:       req.Term,
		Refresh:    req.Refresh,
		Width:      req.Width,
		Height:     req.Height,
		Iterations: req.Iterations,
		K:          req.K,
		Formats:    []string{pipeline.FormatJSON},
		Logger:     s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	added := make([]string, len(result.Added))
	for i, n := range result.Added {
		added[i] = n.Lemma
	}
	writeJSON(w, http.StatusOK, graphResponse{
		Graph:     graph.Export(g),
		GraphHash: result.GraphHash,
		Added:     added,
		Rejected:  result.Rejected,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}

	g, err := graph.Import(req.Graph)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph document"))
		return
	}

	result, err := s.runner.Execute(r.Context(), g, pipeline.Options{
		Width:      req.Width,
		Height:     req.Height,
		Iterations: req.Iterations,
		K:          req.K,
		Formats:    []string{pipeline.FormatJSON},
		Logger:     s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{
		Graph:     graph.Export(g),
		GraphHash: result.GraphHash,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreUnavailable(w)
		return
	}
	records, err := s.store.ListGraphs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []store.GraphRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"graphs": records})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreUnavailable(w)
		return
	}
	g, err := s.store.LoadGraph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"graph": graph.Export(g)})
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreUnavailable(w)
		return
	}
	var req putGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	g, err := graph.Import(req.Graph)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph document"))
		return
	}

	id := chi.URLParam(r, "id")
	name := req.Name
	if name == "" {
		name = id
	}
	if err := s.store.SaveGraph(r.Context(), id, name, g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreUnavailable(w)
		return
	}
	if err := s.store.DeleteGraph(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importOrNew rebuilds a graph from an optional document.
func importOrNew(doc *graph.Document) (*graph.Graph, error) {
	if doc == nil {
		return graph.New(), nil
	}
	g, err := graph.Import(*doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph document")
	}
	return g, nil
}
