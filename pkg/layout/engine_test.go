package layout

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

// buildGrid creates n nodes laid out on a grid, chained with synonym
// edges, inside the given bounds.
func buildGrid(t *testing.T, n int) ([]*graph.Node, []graph.Edge) {
	t.Helper()
	g := graph.New()
	nodes := make([]*graph.Node, 0, n)
	for i := 0; i < n; i++ {
		node, _, err := g.Resolve(fmt.Sprintf("word%03d", i))
		if err != nil {
			t.Fatal(err)
		}
		node.X = float64(i%10)*40 - 180
		node.Y = float64(i/10)*40 - 180
		nodes = append(nodes, node)
	}
	for i := 1; i < n; i++ {
		if _, _, err := g.Connect(nodes[i-1].ID, nodes[i].ID, graph.RelSynonym); err != nil {
			t.Fatal(err)
		}
	}
	return nodes, g.Edges()
}

func positionsOf(nodes []*graph.Node) [][2]float64 {
	pos := make([][2]float64, len(nodes))
	for i, n := range nodes {
		pos[i] = [2]float64{n.X, n.Y}
	}
	return pos
}

func TestStrategySelection(t *testing.T) {
	bounds := Bounds{Width: 1600, Height: 1200}

	small, smallEdges := buildGrid(t, 50)
	if s := NewSimulation(small, smallEdges, bounds, Options{}); s.Strategy() != StrategyExact {
		t.Errorf("50 nodes: strategy = %v, want exact", s.Strategy())
	}

	large, largeEdges := buildGrid(t, 51)
	if s := NewSimulation(large, largeEdges, bounds, Options{}); s.Strategy() != StrategyQuadtree {
		t.Errorf("51 nodes: strategy = %v, want quadtree", s.Strategy())
	}
}

func TestNoOpForTinyGraphs(t *testing.T) {
	bounds := Bounds{Width: 800, Height: 600}

	for _, n := range []int{0, 1} {
		nodes, edges := buildGrid(t, n)
		sim := NewSimulation(nodes, edges, bounds, Options{})
		if !sim.Done() {
			t.Errorf("%d nodes: simulation should be done immediately", n)
		}
		if sim.Step() {
			t.Errorf("%d nodes: Step should report done", n)
		}
	}
}

// TestDisplacementBound checks that no node moves farther than the
// current temperature in any iteration.
func TestDisplacementBound(t *testing.T) {
	nodes, edges := buildGrid(t, 30)
	bounds := Bounds{Width: 1600, Height: 1200}
	sim := NewSimulation(nodes, edges, bounds, Options{Iterations: 40})

	for !sim.Done() {
		temp := sim.Temperature()
		before := positionsOf(nodes)
		sim.Step()

		for i, n := range nodes {
			moved := math.Hypot(n.X-before[i][0], n.Y-before[i][1])
			if moved > temp+1e-9 {
				t.Fatalf("iteration %d: node %d moved %v, temperature %v",
					sim.Iteration(), i, moved, temp)
			}
		}
	}
}

// TestMonotonicCooling checks that the temperature strictly decreases
// and reaches the floor by the final iteration.
func TestMonotonicCooling(t *testing.T) {
	nodes, edges := buildGrid(t, 10)
	sim := NewSimulation(nodes, edges, Bounds{Width: 800, Height: 600}, Options{Iterations: 25})

	prev := sim.Temperature()
	if prev != InitialTemperature {
		t.Fatalf("initial temperature = %v, want %v", prev, InitialTemperature)
	}
	for sim.Step() {
		cur := sim.Temperature()
		if cur >= prev {
			t.Fatalf("iteration %d: temperature %v did not decrease from %v", sim.Iteration(), cur, prev)
		}
		prev = cur
	}
	if final := sim.Temperature(); final > TemperatureFloor+1e-9 {
		t.Errorf("final temperature = %v, want <= %v", final, TemperatureFloor)
	}
}

// TestBoundaryContainment checks that every node stays inside the canvas
// minus the margin after every iteration.
func TestBoundaryContainment(t *testing.T) {
	nodes, edges := buildGrid(t, 60) // quadtree strategy
	bounds := Bounds{Width: 500, Height: 400}
	sim := NewSimulation(nodes, edges, bounds, Options{Iterations: 30})

	limitX := bounds.Width/2 - Margin
	limitY := bounds.Height/2 - Margin
	for {
		more := sim.Step()
		for j, n := range nodes {
			if math.Abs(n.X) > limitX+1e-9 || math.Abs(n.Y) > limitY+1e-9 {
				t.Fatalf("iteration %d: node %d at (%v, %v) outside ±(%v, %v)",
					sim.Iteration(), j, n.X, n.Y, limitX, limitY)
			}
		}
		if !more {
			break
		}
	}
}

// TestDeterminism runs the exact strategy twice on identical inputs and
// expects bit-for-bit identical final positions.
func TestDeterminism(t *testing.T) {
	bounds := Bounds{Width: 1600, Height: 1200}

	run := func() [][2]float64 {
		nodes, edges := buildGrid(t, 25)
		sim := NewSimulation(nodes, edges, bounds, Options{Iterations: 50})
		for sim.Step() {
		}
		return positionsOf(nodes)
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("node %d: run 1 at %v, run 2 at %v", i, first[i], second[i])
		}
	}
}

// TestCoincidentNodesStayFinite floors distances at 0.1 so adversarial
// coincident initial positions never produce NaN or infinite positions.
func TestCoincidentNodesStayFinite(t *testing.T) {
	g := graph.New()
	var nodes []*graph.Node
	for _, lemma := range []string{"alpha", "beta", "gamma"} {
		n, _, _ := g.Resolve(lemma)
		n.X, n.Y = 5, 5
		nodes = append(nodes, n)
	}
	sim := NewSimulation(nodes, nil, Bounds{Width: 800, Height: 600}, Options{Iterations: 20})
	for sim.Step() {
	}
	for i, n := range nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Errorf("node %d at (%v, %v)", i, n.X, n.Y)
		}
	}
}

// TestChainScenario lays out A(0,0)-B(10,0)-C(20,0) with edges A-B and
// B-C for 10 exact iterations. B, pulled from both sides, should move
// less than A or C, and both edge lengths should end closer to k=100
// than to the initial spacing of 10.
func TestChainScenario(t *testing.T) {
	g := graph.New()
	a, _, _ := g.Resolve("a")
	b, _, _ := g.Resolve("b")
	c, _, _ := g.Resolve("c")
	a.X, a.Y = 0, 0
	b.X, b.Y = 10, 0
	c.X, c.Y = 20, 0
	if _, _, err := g.Connect(a.ID, b.ID, graph.RelSynonym); err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Connect(b.ID, c.ID, graph.RelAntonym); err != nil {
		t.Fatal(err)
	}

	start := positionsOf([]*graph.Node{a, b, c})
	sim := NewSimulation([]*graph.Node{a, b, c}, g.Edges(), Bounds{Width: 1600, Height: 1200}, Options{Iterations: 10})
	if sim.Strategy() != StrategyExact {
		t.Fatalf("strategy = %v, want exact", sim.Strategy())
	}
	for sim.Step() {
	}

	moved := func(n *graph.Node, i int) float64 {
		return math.Hypot(n.X-start[i][0], n.Y-start[i][1])
	}
	if mB, mA, mC := moved(b, 1), moved(a, 0), moved(c, 2); mB >= mA || mB >= mC {
		t.Errorf("displacement B=%v should be below A=%v and C=%v", mB, mA, mC)
	}

	ab := math.Hypot(a.X-b.X, a.Y-b.Y)
	bc := math.Hypot(b.X-c.X, b.Y-c.Y)
	for name, d := range map[string]float64{"A-B": ab, "B-C": bc} {
		if math.Abs(d-DefaultK) >= math.Abs(d-10) {
			t.Errorf("%s distance %v should be closer to k=%v than to the initial 10", name, d, DefaultK)
		}
	}
}

func TestEngineApplyCompletes(t *testing.T) {
	nodes, edges := buildGrid(t, 20)
	e := NewEngine(Options{Iterations: 30})

	if e.IsRunning() {
		t.Fatal("engine should be idle before Apply")
	}
	if err := e.Apply(context.Background(), nodes, edges, Bounds{Width: 1600, Height: 1200}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if e.IsRunning() {
		t.Error("engine should be idle after Apply returns")
	}
}

// TestEngineRestartSupersedesRun starts a second Apply while the first is
// still relaxing. The first run must exit with context.Canceled and the
// fresh run must survive it, run to completion, and leave the engine idle.
func TestEngineRestartSupersedesRun(t *testing.T) {
	longNodes, longEdges := buildGrid(t, 200)
	shortNodes, shortEdges := buildGrid(t, 5)
	bounds := Bounds{Width: 1600, Height: 1200}
	e := NewEngine(Options{Iterations: 5000})

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- e.Apply(context.Background(), longNodes, longEdges, bounds)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !e.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := e.Apply(context.Background(), shortNodes, shortEdges, bounds); err != nil {
		t.Fatalf("restarted run: %v", err)
	}
	if err := <-firstErr; err != context.Canceled {
		t.Errorf("superseded run: err = %v, want context.Canceled", err)
	}
	if e.IsRunning() {
		t.Error("engine should be idle after both runs returned")
	}
}

func TestEngineCancelledContext(t *testing.T) {
	nodes, edges := buildGrid(t, 20)
	before := positionsOf(nodes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(Options{})
	err := e.Apply(ctx, nodes, edges, Bounds{Width: 1600, Height: 1200})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// Cancellation before the first iteration leaves positions untouched:
	// a partial (here: empty) layout is a valid outcome.
	after := positionsOf(nodes)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("node %d moved on a cancelled run", i)
		}
	}
	if e.IsRunning() {
		t.Error("engine should be idle after a cancelled run")
	}
}
