package layout

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

// Strategy names the repulsion computation used by a run.
type Strategy string

const (
	// StrategyExact computes repulsion over all unordered node pairs.
	StrategyExact Strategy = "exact"
	// StrategyQuadtree approximates repulsion through a Barnes-Hut tree
	// rebuilt from current positions every iteration.
	StrategyQuadtree Strategy = "quadtree"
)

// DefaultIterationBudget is the wall-clock slice the engine runs before
// yielding the processor back to the host.
const DefaultIterationBudget = 100 * time.Microsecond

// Options configures a layout run. The zero value selects the reference
// parameters.
type Options struct {
	K                  float64       // natural edge length (default 100)
	Iterations         int           // relaxation pass length (default 150)
	InitialTemperature float64       // starting displacement bound (default 100)
	TemperatureFloor   float64       // temperature after the final iteration (default 0.01)
	Theta              float64       // Barnes-Hut accuracy threshold (default 0.5)
	ExactThreshold     int           // max node count for the exact strategy (default 50)
	Margin             float64       // canvas margin for clamping (default 50)
	IterationBudget    time.Duration // time slice before yielding (default 100µs)
}

func (o Options) withDefaults() Options {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.InitialTemperature == 0 {
		o.InitialTemperature = InitialTemperature
	}
	if o.TemperatureFloor == 0 {
		o.TemperatureFloor = TemperatureFloor
	}
	if o.Theta == 0 {
		o.Theta = DefaultTheta
	}
	if o.ExactThreshold == 0 {
		o.ExactThreshold = DefaultExactThreshold
	}
	if o.Margin == 0 {
		o.Margin = Margin
	}
	if o.IterationBudget == 0 {
		o.IterationBudget = DefaultIterationBudget
	}
	return o
}

// =============================================================================
// Simulation - Resumable Relaxation Loop
// =============================================================================

// Simulation is one relaxation pass over a fixed set of nodes and edges.
// Each Step advances a single iteration; the host (normally [Engine])
// decides when to step, yield, or abandon the run. A Simulation is owned
// by a single goroutine and must not be shared.
type Simulation struct {
	opts     Options
	nodes    []*graph.Node
	edges    []graph.Edge
	bounds   Bounds
	index    map[string]int // node ID -> slice index
	strategy Strategy

	temperature float64
	cooling     float64
	iter        int
}

// NewSimulation prepares a relaxation pass. The node slice order fixes
// the iteration order and therefore the (deterministic) result. Graphs
// with fewer than two nodes produce a no-op simulation.
func NewSimulation(nodes []*graph.Node, edges []graph.Edge, bounds Bounds, opts Options) *Simulation {
	opts = opts.withDefaults()
	s := &Simulation{
		opts:        opts,
		nodes:       nodes,
		edges:       edges,
		bounds:      bounds,
		index:       make(map[string]int, len(nodes)),
		strategy:    StrategyExact,
		temperature: opts.InitialTemperature,
		cooling:     CoolingFactor(opts.InitialTemperature, opts.TemperatureFloor, opts.Iterations),
	}
	if len(nodes) > opts.ExactThreshold {
		s.strategy = StrategyQuadtree
	}
	for i, n := range nodes {
		s.index[n.ID] = i
	}
	return s
}

// Strategy reports which repulsion strategy this simulation uses.
func (s *Simulation) Strategy() Strategy { return s.strategy }

// Temperature returns the current displacement bound. It reflects the
// decay applied at the end of the last completed iteration.
func (s *Simulation) Temperature() float64 { return s.temperature }

// Iteration returns the number of completed iterations.
func (s *Simulation) Iteration() int { return s.iter }

// Done reports whether the pass has run its full iteration count.
func (s *Simulation) Done() bool {
	return s.iter >= s.opts.Iterations || len(s.nodes) < 2
}

// Step advances the simulation by one iteration and reports whether more
// iterations remain. Positions written by iteration i are always the
// ones read by iteration i+1; there is no cross-iteration parallelism.
func (s *Simulation) Step() bool {
	if s.Done() {
		return false
	}

	fx := make([]float64, len(s.nodes))
	fy := make([]float64, len(s.nodes))

	switch s.strategy {
	case StrategyQuadtree:
		s.repulsionQuadtree(fx, fy)
	default:
		s.repulsionExact(fx, fy)
	}
	s.attraction(fx, fy)

	// Displacement is capped by the current temperature, then positions
	// are clamped to the canvas minus the margin.
	for i, n := range s.nodes {
		f := math.Hypot(fx[i], fy[i])
		if f > 0 {
			d := math.Min(f, s.temperature)
			n.X += fx[i] / f * d
			n.Y += fy[i] / f * d
		}
		n.X, n.Y = s.bounds.Clamp(n.X, n.Y, s.opts.Margin)
	}

	s.temperature *= s.cooling
	s.iter++
	return !s.Done()
}

// repulsionExact accumulates k²/d repulsion over all unordered pairs.
func (s *Simulation) repulsionExact(fx, fy []float64) {
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx := a.X - b.X
			dy := a.Y - b.Y
			d := math.Max(math.Hypot(dx, dy), DistanceFloor)
			f := Repulsion(s.opts.K, d)
			ux, uy := dx/d, dy/d
			fx[i] += ux * f
			fy[i] += uy * f
			fx[j] -= ux * f
			fy[j] -= uy * f
		}
	}
}

// repulsionQuadtree rebuilds the Barnes-Hut tree from current positions
// and queries the approximate repulsion per node.
func (s *Simulation) repulsionQuadtree(fx, fy []float64) {
	points := make([]MassPoint, len(s.nodes))
	for i, n := range s.nodes {
		points[i] = MassPoint{ID: n.ID, X: n.X, Y: n.Y, Mass: 1}
	}
	tree := buildTree(points)
	for i := range points {
		fx[i], fy[i] = tree.ForceOn(points[i], s.opts.K, s.opts.Theta)
	}
}

// attraction accumulates d²/k attraction along the edge list, pulling
// both endpoints together. Edges referencing unknown nodes are skipped.
func (s *Simulation) attraction(fx, fy []float64) {
	for _, e := range s.edges {
		i, ok := s.index[e.From]
		if !ok {
			continue
		}
		j, ok := s.index[e.To]
		if !ok || i == j {
			continue
		}
		a, b := s.nodes[i], s.nodes[j]
		dx := a.X - b.X
		dy := a.Y - b.Y
		d := math.Max(math.Hypot(dx, dy), DistanceFloor)
		f := Attraction(s.opts.K, d)
		ux, uy := dx/d, dy/d
		fx[i] -= ux * f
		fy[i] -= uy * f
		fx[j] += ux * f
		fy[j] += uy * f
	}
}

// =============================================================================
// Engine - Cancellable Scheduler
// =============================================================================

// Engine schedules layout runs. It owns no graph state; instantiate one
// per layout session. At most one run is active per engine: starting a
// new run cancels the in-flight one first.
type Engine struct {
	opts Options

	mu      sync.Mutex
	cancel  context.CancelFunc
	gen     uint64 // increments per run; cleanup only tears down its own run
	running bool
}

// NewEngine creates an engine with the given options (zero value for the
// reference parameters).
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Apply runs a full force-directed relaxation pass over the nodes,
// mutating only their positions. It blocks until the pass completes or
// is cancelled, yielding the processor between time slices so a host
// render loop is never starved.
//
// Cancellation - through ctx, [Engine.Cancel], or a concurrent Apply on
// the same engine - returns context.Canceled and leaves the positions
// exactly as last written; a partial layout is a valid outcome, not a
// failure. Zero or one node is a no-op.
func (e *Engine) Apply(ctx context.Context, nodes []*graph.Node, edges []graph.Edge, bounds Bounds) error {
	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel() // at most one active run
	}
	e.gen++
	gen := e.gen
	e.cancel = cancel
	e.running = true
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		// A newer Apply may have taken over the engine while this run was
		// winding down; its state is not ours to clear.
		if e.gen == gen {
			e.cancel = nil
			e.running = false
		}
		e.mu.Unlock()
	}()

	sim := NewSimulation(nodes, edges, bounds, e.opts)
	sliceStart := time.Now()

	for !sim.Done() {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		sim.Step()

		if time.Since(sliceStart) >= e.opts.IterationBudget {
			runtime.Gosched()
			sliceStart = time.Now()
		}
	}
	return nil
}

// Cancel aborts the in-flight run, if any. The run exits at its next
// iteration boundary without corrupting node positions.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// IsRunning reports whether a layout run is currently active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}
