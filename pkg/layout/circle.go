package layout

import (
	"math"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

// DefaultNodeSize is the visual diameter assumed for a node when placing
// newly created children, in canvas units.
const DefaultNodeSize = 60.0

// OptimalRadius returns a circle radius large enough that count children
// of the given visual size do not overlap: the circumference holds count
// nodes with half a node size of slack each. Never below the node size
// itself, so a single child is not placed on top of its parent.
func OptimalRadius(count int, nodeSize float64) float64 {
	if nodeSize <= 0 {
		nodeSize = DefaultNodeSize
	}
	r := float64(count) * nodeSize * 1.5 / (2 * math.Pi)
	return math.Max(r, nodeSize)
}

// ArrangeChildrenInCircle places the children evenly on a circle
// centered on the parent, starting at angle zero (east) and stepping
// 2π/n counter-clockwise. It is a synchronous, pure positional update;
// only the children move.
func ArrangeChildrenInCircle(parent *graph.Node, children []*graph.Node, radius float64) {
	if parent == nil || len(children) == 0 {
		return
	}
	step := 2 * math.Pi / float64(len(children))
	for i, child := range children {
		angle := float64(i) * step
		child.X = parent.X + radius*math.Cos(angle)
		child.Y = parent.Y + radius*math.Sin(angle)
	}
}
