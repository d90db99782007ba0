package graph

import (
	"fmt"
	"strings"
)

// RelationKind classifies how two lemmas relate to each other.
type RelationKind string

// The fixed set of relation kinds produced by the expansion service.
const (
	RelSynonym     RelationKind = "synonym"
	RelAntonym     RelationKind = "antonym"
	RelAssociate   RelationKind = "associate"
	RelEtymology   RelationKind = "etymology"
	RelCollocation RelationKind = "collocation"
)

// ValidRelations is the set of accepted relation kinds.
var ValidRelations = map[RelationKind]bool{
	RelSynonym:     true,
	RelAntonym:     true,
	RelAssociate:   true,
	RelEtymology:   true,
	RelCollocation: true,
}

// ParseRelation converts a string to a RelationKind.
// Leading/trailing whitespace and case are ignored.
// Returns an error for tags outside the fixed enumeration.
func ParseRelation(s string) (RelationKind, error) {
	k := RelationKind(strings.ToLower(strings.TrimSpace(s)))
	if !ValidRelations[k] {
		return "", fmt.Errorf("unknown relation kind %q", s)
	}
	return k, nil
}

// Node is a vocabulary term in the map. The lemma is the dedup key:
// no two nodes share the same normalized lemma. Position is mutable and
// owned by the node; the layout engine is the only writer during a run.
type Node struct {
	ID       string
	Lemma    string
	X, Y     float64
	Expanded bool

	// Payload attributes irrelevant to layout.
	POS         string
	Explanation string
	Examples    []string
}

// Edge connects two nodes with a relation kind. At most one edge exists
// between any unordered pair of nodes, regardless of direction or kind.
type Edge struct {
	ID   string
	From string
	To   string
	Rel  RelationKind
}

// Relation is one (term, kind) pair from an expansion result, consumed
// by [Graph.Expand].
type Relation struct {
	Term string
	Kind RelationKind
}

// NormalizeLemma canonicalizes a term for use as a dedup key:
// lowercase, internal whitespace collapsed to single spaces, trimmed.
func NormalizeLemma(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
