package layout

import (
	"math"
	"testing"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

func TestArrangeChildrenInCircle(t *testing.T) {
	g := graph.New()
	parent, _, _ := g.Resolve("center")
	parent.X, parent.Y = 0, 0

	var children []*graph.Node
	for _, lemma := range []string{"east", "north", "west", "south"} {
		n, _, _ := g.Resolve(lemma)
		children = append(children, n)
	}

	ArrangeChildrenInCircle(parent, children, 120)

	want := [][2]float64{{120, 0}, {0, 120}, {-120, 0}, {0, -120}}
	for i, child := range children {
		if math.Abs(child.X-want[i][0]) > 1e-9 || math.Abs(child.Y-want[i][1]) > 1e-9 {
			t.Errorf("child %d at (%v, %v), want (%v, %v)", i, child.X, child.Y, want[i][0], want[i][1])
		}
	}
}

func TestArrangeChildrenOffsetParent(t *testing.T) {
	g := graph.New()
	parent, _, _ := g.Resolve("center")
	parent.X, parent.Y = -50, 200
	child, _, _ := g.Resolve("only")

	ArrangeChildrenInCircle(parent, []*graph.Node{child}, 80)

	if math.Abs(child.X-(-50+80)) > 1e-9 || math.Abs(child.Y-200) > 1e-9 {
		t.Errorf("child at (%v, %v), want (30, 200)", child.X, child.Y)
	}
	if parent.X != -50 || parent.Y != 200 {
		t.Error("parent must not move")
	}
}

func TestOptimalRadius(t *testing.T) {
	// Circumference holds count nodes with 1.5x slack.
	want := 8 * 60.0 * 1.5 / (2 * math.Pi)
	if got := OptimalRadius(8, 60); math.Abs(got-want) > 1e-9 {
		t.Errorf("OptimalRadius(8, 60) = %v, want %v", got, want)
	}

	// A single child should still clear the parent.
	if got := OptimalRadius(1, 60); got < 60 {
		t.Errorf("OptimalRadius(1, 60) = %v, want >= 60", got)
	}

	// More children need a larger circle.
	if OptimalRadius(12, 60) <= OptimalRadius(6, 60) {
		t.Error("radius should grow with child count")
	}
}

func TestArrangeChildrenNilSafe(t *testing.T) {
	ArrangeChildrenInCircle(nil, nil, 100) // must not panic

	g := graph.New()
	parent, _, _ := g.Resolve("p")
	ArrangeChildrenInCircle(parent, nil, 100)
}
