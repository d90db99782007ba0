package graph

import (
	"encoding/json"
	"fmt"
	"slices"
)

// =============================================================================
// Document - Canonical Serialization Format
// =============================================================================

// Document is the canonical serialization format for vocabulary graphs.
// Used for API responses, file export, and Mongo storage.
//
// The format is designed for round-trip fidelity: export → import
// reproduces the same nodes, positions, and edges.
type Document struct {
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges" bson:"edges"`
}

// NodeRecord is the serialized form of a Node.
type NodeRecord struct {
	ID          string   `json:"id" bson:"id"`
	Lemma       string   `json:"lemma" bson:"lemma"`
	X           float64  `json:"x" bson:"x"`
	Y           float64  `json:"y" bson:"y"`
	Expanded    bool     `json:"expanded,omitempty" bson:"expanded,omitempty"`
	POS         string   `json:"pos,omitempty" bson:"pos,omitempty"`
	Explanation string   `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Examples    []string `json:"examples,omitempty" bson:"examples,omitempty"`
}

// EdgeRecord is the serialized form of an Edge.
type EdgeRecord struct {
	ID   string `json:"id" bson:"id"`
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Rel  string `json:"rel" bson:"rel"`
}

// Export converts a graph to its serialization format.
// Nodes are sorted by lemma for deterministic output; edges keep
// insertion order.
func Export(g *Graph) Document {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		if a.Lemma < b.Lemma {
			return -1
		}
		if a.Lemma > b.Lemma {
			return 1
		}
		return 0
	})

	doc := Document{
		Nodes: make([]NodeRecord, len(nodes)),
		Edges: make([]EdgeRecord, g.EdgeCount()),
	}
	for i, n := range nodes {
		doc.Nodes[i] = NodeRecord{
			ID:          n.ID,
			Lemma:       n.Lemma,
			X:           n.X,
			Y:           n.Y,
			Expanded:    n.Expanded,
			POS:         n.POS,
			Explanation: n.Explanation,
			Examples:    slices.Clone(n.Examples),
		}
	}
	for i, e := range g.Edges() {
		doc.Edges[i] = EdgeRecord{ID: e.ID, From: e.From, To: e.To, Rel: string(e.Rel)}
	}
	return doc
}

// Import converts a Document back into a live graph.
// Returns an error if the document violates graph invariants
// (duplicate lemmas, duplicate pairs, unknown edge endpoints) or
// contains a relation kind outside the enumeration.
func Import(doc Document) (*Graph, error) {
	g := New()
	for _, nr := range doc.Nodes {
		if _, err := g.AddNode(Node{
			ID:          nr.ID,
			Lemma:       nr.Lemma,
			X:           nr.X,
			Y:           nr.Y,
			Expanded:    nr.Expanded,
			POS:         nr.POS,
			Explanation: nr.Explanation,
			Examples:    slices.Clone(nr.Examples),
		}); err != nil {
			return nil, fmt.Errorf("node %s: %w", nr.Lemma, err)
		}
	}
	for _, er := range doc.Edges {
		kind, err := ParseRelation(er.Rel)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w: %q", er.From, er.To, ErrInvalidRelation, er.Rel)
		}
		if _, _, err := g.connect(Edge{ID: er.ID, From: er.From, To: er.To, Rel: kind}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", er.From, er.To, err)
		}
	}
	return g, nil
}

// MarshalDocument serializes a Document to pretty-printed JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument deserializes JSON bytes into a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}
