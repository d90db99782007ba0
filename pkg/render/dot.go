// Package render turns a positioned vocabulary graph into viewable
// artifacts. The graph goes through Graphviz DOT with node positions
// pinned, so the force layout's coordinates survive into the SVG or PNG
// unchanged; Graphviz only draws, it does not lay out.
package render

import (
	"bytes"
	"fmt"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Name is the DOT graph name. Defaults to "wordmiro".
	Name string

	// Detailed includes part of speech and explanations in node labels.
	Detailed bool
}

// edgeStyles maps each relation kind to its DOT edge attributes.
// Colors follow the app's palette: synonyms read as "same", antonyms as
// "opposite", the rest as weaker associations.
var edgeStyles = map[graph.RelationKind]string{
	graph.RelSynonym:     `color="#2563eb"`,
	graph.RelAntonym:     `color="#dc2626", style=dashed`,
	graph.RelAssociate:   `color="#6b7280"`,
	graph.RelEtymology:   `color="#7c3aed", style=dotted`,
	graph.RelCollocation: `color="#059669"`,
}

// ToDOT converts a positioned graph to Graphviz DOT. Every node carries
// a pinned pos attribute, so the output must be rendered with a
// position-respecting engine (neato); see [RenderSVG].
//
// Points are the DOT unit; canvas coordinates are divided by 72 so one
// canvas unit maps to one pixel at default DPI.
func ToDOT(g *graph.Graph, opts Options) string {
	name := opts.Name
	if name == "" {
		name = "wordmiro"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", name)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [penwidth=1.2];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmt.Sprintf("label=%q, pos=\"%.2f,%.2f!\"", nodeLabel(n, opts.Detailed), n.X/72, -n.Y/72)
		if n.Expanded {
			attrs += `, fillcolor="#eff6ff"`
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		style, ok := edgeStyles[e.Rel]
		if !ok {
			style = `color="#6b7280"`
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.Lemma
	}
	label := n.Lemma
	if n.POS != "" {
		label += " (" + n.POS + ")"
	}
	if n.Explanation != "" {
		label += "\n" + n.Explanation
	}
	return label
}
