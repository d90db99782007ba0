// Package store persists vocabulary graphs.
//
// Two backends exist: JSON files for the CLI (one graph per file, the
// same document format the API serves) and MongoDB for server
// deployments. Both round-trip through [graph.Document], so a graph
// saved by one backend can be loaded by the other.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

// WriteJSON encodes a graph as a pretty-printed JSON document and
// writes it to w. Output is deterministic: nodes are sorted by lemma.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	doc := graph.Export(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadJSON decodes a JSON graph document from r into a live graph.
// The document is validated against graph invariants: duplicate lemmas,
// duplicate term pairs, unknown edge endpoints, and unknown relation
// kinds are all rejected.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc graph.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g, err := graph.Import(doc)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return g, nil
}

// ImportJSON reads a graph from a JSON file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
