package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	a, _, err := g.Resolve("ephemeral")
	if err != nil {
		t.Fatal(err)
	}
	a.X, a.Y = 12.5, -3.25
	a.Expanded = true
	a.Explanation = "lasting a very short time"

	b, _, _ := g.Resolve("transient")
	b.X, b.Y = -40, 7

	if _, _, err := g.Connect(a.ID, b.ID, graph.RelSynonym); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestJSONRoundTrip(t *testing.T) {
	g := buildGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.NodeCount() != 2 || got.EdgeCount() != 1 {
		t.Fatalf("round trip: %d nodes, %d edges", got.NodeCount(), got.EdgeCount())
	}

	// Positions and payload survive.
	n, ok := got.NodeByLemma("ephemeral")
	if !ok {
		t.Fatal("ephemeral missing after round trip")
	}
	if n.X != 12.5 || n.Y != -3.25 || !n.Expanded || n.Explanation == "" {
		t.Errorf("node payload lost: %+v", n)
	}

	// Re-export is byte-identical: the format is deterministic.
	var buf2 bytes.Buffer
	if err := WriteJSON(got, &buf2); err != nil {
		t.Fatal(err)
	}
	var buf1 bytes.Buffer
	if err := WriteJSON(g, &buf1); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Error("re-export differs from original export")
	}
}

func TestFileRoundTrip(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Errorf("file round trip: %d nodes, %d edges", got.NodeCount(), got.EdgeCount())
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("want error for missing file")
	}
}

func TestReadJSONRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"nodes": [`},
		{"duplicate lemma", `{
			"nodes": [
				{"id": "1", "lemma": "word"},
				{"id": "2", "lemma": "Word"}
			],
			"edges": []
		}`},
		{"unknown edge endpoint", `{
			"nodes": [{"id": "1", "lemma": "word"}],
			"edges": [{"id": "e", "from": "1", "to": "ghost", "rel": "synonym"}]
		}`},
		{"unknown relation kind", `{
			"nodes": [
				{"id": "1", "lemma": "one"},
				{"id": "2", "lemma": "two"}
			],
			"edges": [{"id": "e", "from": "1", "to": "2", "rel": "rhymes-with"}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}
