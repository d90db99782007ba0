// Package graph implements the WordMiro vocabulary graph: nodes keyed by
// normalized lemma, edges tagged with a relation kind, and the
// deduplication rules applied when expansion results are merged in.
//
// # Invariants
//
// Two invariants are enforced on every mutation:
//
//  1. At most one node exists per normalized lemma. Resolving a term that
//     is already present reuses the existing node.
//  2. At most one edge exists between any unordered pair of nodes,
//     regardless of direction or relation kind. A second discovered
//     relationship between the same pair is dropped.
//
// Nodes are never destroyed by this package; deletion is a UI concern.
//
// Graph is not safe for concurrent use without external synchronization.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrEmptyLemma is returned when a term normalizes to the empty string.
	ErrEmptyLemma = errors.New("lemma must not be empty")

	// ErrUnknownNode is returned when an operation references a node ID
	// that does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNodeID is returned by AddNode when a node with the same
	// ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateLemma is returned by AddNode when a node with the same
	// normalized lemma already exists. Use Resolve to reuse it instead.
	ErrDuplicateLemma = errors.New("duplicate lemma")

	// ErrInvalidRelation is returned when a relation kind is outside the
	// fixed enumeration.
	ErrInvalidRelation = errors.New("invalid relation kind")
)

// pairKey identifies an unordered node pair.
type pairKey [2]string

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Graph holds the vocabulary map. The zero value is not usable - use New.
type Graph struct {
	nodes   map[string]*Node
	byLemma map[string]*Node
	order   []string // node IDs in insertion order, for deterministic iteration
	edges   []Edge
	pairs   map[pairKey]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		byLemma: make(map[string]*Node),
		pairs:   make(map[pairKey]struct{}),
	}
}

// AddNode inserts a fully specified node, typically during import.
// The lemma is normalized before insertion. Returns ErrDuplicateNodeID or
// ErrDuplicateLemma if either identity is already taken.
func (g *Graph) AddNode(n Node) (*Node, error) {
	n.Lemma = NormalizeLemma(n.Lemma)
	if n.Lemma == "" {
		return nil, ErrEmptyLemma
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, exists := g.nodes[n.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if _, exists := g.byLemma[n.Lemma]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLemma, n.Lemma)
	}
	node := &n
	g.nodes[node.ID] = node
	g.byLemma[node.Lemma] = node
	g.order = append(g.order, node.ID)
	return node, nil
}

// Resolve returns the node for the given term, creating it when no node
// with that normalized lemma exists yet. The second return value reports
// whether a new node was created.
func (g *Graph) Resolve(term string) (*Node, bool, error) {
	lemma := NormalizeLemma(term)
	if lemma == "" {
		return nil, false, ErrEmptyLemma
	}
	if n, ok := g.byLemma[lemma]; ok {
		return n, false, nil
	}
	n, err := g.AddNode(Node{Lemma: lemma})
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// Connect adds an edge between two existing nodes unless the unordered
// pair is already connected. The returned edge is a copy; mutating it
// does not affect the graph. The second return value reports whether an
// edge was actually added; a false return with nil error means the pair
// was already connected and the new relation was dropped.
func (g *Graph) Connect(fromID, toID string, kind RelationKind) (Edge, bool, error) {
	return g.connect(Edge{From: fromID, To: toID, Rel: kind})
}

// connect inserts e unless the unordered pair is already connected,
// minting an ID when e.ID is empty. Import passes edges with their
// stored IDs; all other paths go through [Graph.Connect].
func (g *Graph) connect(e Edge) (Edge, bool, error) {
	if !ValidRelations[e.Rel] {
		return Edge{}, false, fmt.Errorf("%w: %q", ErrInvalidRelation, e.Rel)
	}
	if _, ok := g.nodes[e.From]; !ok {
		return Edge{}, false, fmt.Errorf("%w: %s", ErrUnknownNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return Edge{}, false, fmt.Errorf("%w: %s", ErrUnknownNode, e.To)
	}
	key := newPairKey(e.From, e.To)
	if _, dup := g.pairs[key]; dup {
		return Edge{}, false, nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	g.edges = append(g.edges, e)
	g.pairs[key] = struct{}{}
	return e, true, nil
}

// Expand merges an expansion result into the graph: each (term, kind)
// pair is resolved against existing lemmas, connected to the parent if
// the pair is not yet connected, and the parent is marked expanded.
//
// Returns the newly created (not reused) child nodes, in input order,
// for circular initial placement. Reused nodes keep their positions.
// A relation kind outside the fixed enumeration aborts with
// ErrInvalidRelation; callers validate expansion payloads first.
func (g *Graph) Expand(parentID string, relations []Relation) ([]*Node, error) {
	parent, ok := g.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, parentID)
	}

	var created []*Node
	for _, rel := range relations {
		if !ValidRelations[rel.Kind] {
			return created, fmt.Errorf("%w: %q", ErrInvalidRelation, rel.Kind)
		}
		child, isNew, err := g.Resolve(rel.Term)
		if err != nil {
			return created, fmt.Errorf("resolve %q: %w", rel.Term, err)
		}
		if child.ID == parent.ID {
			continue // the service echoed the parent term back
		}
		if _, _, err := g.Connect(parent.ID, child.ID, rel.Kind); err != nil {
			return created, err
		}
		if isNew {
			created = append(created, child)
		}
	}
	parent.Expanded = true
	return created, nil
}

// Node returns the node with the given ID, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeByLemma returns the node for a term's normalized lemma, or nil and false.
func (g *Graph) NodeByLemma(term string) (*Node, bool) {
	n, ok := g.byLemma[NormalizeLemma(term)]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice is freshly
// allocated but the pointers refer to live graph nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Connected reports whether an edge exists between the unordered pair.
func (g *Graph) Connected(a, b string) bool {
	_, ok := g.pairs[newPairKey(a, b)]
	return ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }
