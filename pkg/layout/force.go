package layout

import "math"

// Force model constants. All distances are in abstract canvas units.
const (
	// DefaultK is the natural edge length of the force model.
	DefaultK = 100.0

	// DefaultIterations is the relaxation pass length. Termination is by
	// iteration count, never by convergence.
	DefaultIterations = 150

	// InitialTemperature is the starting bound on per-node displacement.
	InitialTemperature = 100.0

	// TemperatureFloor is the small value the temperature decays to by
	// the final iteration.
	TemperatureFloor = 0.01

	// DistanceFloor is the minimum distance used in force computations,
	// avoiding singularities for coincident nodes.
	DistanceFloor = 0.1

	// DefaultTheta is the Barnes-Hut accuracy/speed trade-off: regions
	// with width/distance below it are treated as a single mass.
	DefaultTheta = 0.5

	// DefaultExactThreshold is the node count up to which repulsion is
	// computed exactly over all pairs instead of through the quadtree.
	DefaultExactThreshold = 50

	// Margin keeps final positions away from the canvas border.
	Margin = 50.0
)

// Repulsion returns the magnitude of the repulsive force between two
// nodes at distance d: k²/d. Callers floor d at DistanceFloor.
func Repulsion(k, d float64) float64 { return k * k / d }

// Attraction returns the magnitude of the attractive force along an edge
// of length d: d²/k. Callers floor d at DistanceFloor.
func Attraction(k, d float64) float64 { return d * d / k }

// CoolingFactor returns the multiplicative decay applied to the
// temperature each iteration, chosen so that after iterations steps the
// temperature falls from t0 to the given floor: (floor/t0)^(1/I).
func CoolingFactor(t0, floor float64, iterations int) float64 {
	if iterations <= 0 {
		return 1
	}
	return math.Pow(floor/t0, 1/float64(iterations))
}

// Bounds is the canvas rectangle supplied by the caller, centered on the
// origin. Final positions are clamped to it minus Margin on each side.
type Bounds struct {
	Width, Height float64
}

// Clamp restricts a position to the bounds minus the margin,
// independently per axis.
func (b Bounds) Clamp(x, y, margin float64) (float64, float64) {
	return clampAxis(x, b.Width, margin), clampAxis(y, b.Height, margin)
}

func clampAxis(v, extent, margin float64) float64 {
	limit := extent/2 - margin
	if limit < 0 {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}
