// Package pkg provides the core libraries for wordmiro vocabulary graphs.
//
// # Overview
//
// Wordmiro grows vocabulary note graphs: a term is expanded into its related
// words (synonyms, antonyms, associations, etymology, collocations), the
// graph is relaxed with a force-directed layout, and the result is rendered.
// The pkg directory is organized into four main areas:
//
//  1. Domain logic: [graph], [layout], [expand]
//  2. Infrastructure: [cache], [config], [errors], [httputil], [observability]
//  3. Persistence and output: [store], [render]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow through wordmiro:
//
//	Expansion service (term → related words)
//	         ↓
//	    [expand] package (validate and repair the response)
//	         ↓
//	    [graph] package (dedup by lemma, connect relations)
//	         ↓
//	    [layout] package (force simulation, Barnes-Hut for large graphs)
//	         ↓
//	    [render] package (DOT with pinned positions → SVG/PNG)
//
// # Quick Start
//
// Expand a term and lay out the result:
//
//	import (
//	    "context"
//	    "github.com/DELAxGithub/wordmiro/pkg/expand"
//	    "github.com/DELAxGithub/wordmiro/pkg/graph"
//	    "github.com/DELAxGithub/wordmiro/pkg/pipeline"
//	)
//
//	client, _ := expand.NewClient(expand.Options{BaseURL: "https://api.example.com"})
//	runner := pipeline.NewRunner(nil, nil, client, nil)
//	defer runner.Close()
//
//	g := graph.New()
//	result, _ := runner.Execute(context.Background(), g, pipeline.Options{
//	    Term:    "ephemeral",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// [graph] - The vocabulary graph: nodes deduplicated by normalized lemma,
// undirected typed edges, and the JSON document form used for persistence.
//
// [layout] - Force-directed layout. Small graphs use exact pairwise
// repulsion; larger ones switch to a Barnes-Hut quadtree. Circular placement
// seeds newly expanded terms around their parent.
//
// [expand] - HTTP client for the expansion service. Responses are treated as
// untrusted: entries are validated, repaired, capped, and the rejects
// reported.
//
// [pipeline] - Orchestrates expand → merge → layout → render with per-stage
// caching, used by both the CLI and the HTTP API.
//
// [render] - DOT generation with pinned node positions and Graphviz-based
// SVG/PNG rasterization.
//
// [store] - Graph persistence: JSON files for the CLI, MongoDB for the
// server.
//
// [cache] - Cache interface with file, Redis, and null backends plus the
// content-addressed key scheme for expansions, layouts, and artifacts.
//
// [config] - TOML configuration with validated defaults.
//
// [errors] - Structured errors with machine-readable codes and input
// validation helpers.
//
// [httputil] - HTTP response caching and retry with exponential backoff.
//
// [observability] - Hook interfaces for instrumenting pipeline and cache
// activity.
//
// [graph]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/graph
// [layout]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/layout
// [expand]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/expand
// [pipeline]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/render
// [store]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/store
// [cache]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/cache
// [config]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/config
// [errors]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/DELAxGithub/wordmiro/pkg/observability
package pkg
