package layout

import "math"

// nodeCapacity is the number of mass points a tree node holds before it
// subdivides into quadrants.
const nodeCapacity = 1

// maxTreeDepth bounds subdivision so coincident points cannot recurse
// indefinitely; a node at this depth holds points beyond capacity.
const maxTreeDepth = 32

// Rect is an axis-aligned rectangle with its origin at the minimum corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the rectangle.
// The maximum edges are inclusive so points on the outer boundary of the
// root region are still accepted.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// MassPoint is the projection of a graph node into the spatial index for
// one layout iteration: an identity, a position, and a mass weight.
type MassPoint struct {
	ID   string
	X, Y float64
	Mass float64
}

// TreeStats carries diagnostic counters for a quadtree.
type TreeStats struct {
	Nodes    int // total tree nodes, internal and leaf
	Leaves   int
	Points   int // mass points stored at leaves
	MaxDepth int
}

// QuadTree recursively partitions 2D space and aggregates mass and
// center-of-mass per region, so distant clusters can be approximated as a
// single body during repulsion queries (Barnes-Hut).
//
// The tree is ephemeral: it is rebuilt from current node positions at the
// start of every layout iteration and never outlives it.
type QuadTree struct {
	boundary Rect
	points   []MassPoint
	children [4]*QuadTree // NW, NE, SW, SE; all nil while the node is a leaf

	comX, comY float64 // center of mass
	mass       float64
	depth      int
}

// NewQuadTree creates an empty tree covering the given region.
func NewQuadTree(boundary Rect) *QuadTree {
	return &QuadTree{boundary: boundary}
}

// Insert adds a mass point to the tree. It returns false when the point
// lies outside the tree's boundary; the point is not stored in that case.
func (q *QuadTree) Insert(p MassPoint) bool {
	if !q.boundary.Contains(p.X, p.Y) {
		return false
	}
	if p.Mass <= 0 {
		p.Mass = 1
	}

	// Running mass-weighted average keeps the center of mass of every
	// region equal to the aggregate of all points in its subtree.
	total := q.mass + p.Mass
	q.comX = (q.comX*q.mass + p.X*p.Mass) / total
	q.comY = (q.comY*q.mass + p.Y*p.Mass) / total
	q.mass = total

	if q.isLeaf() {
		if len(q.points) < nodeCapacity || q.depth >= maxTreeDepth {
			q.points = append(q.points, p)
			return true
		}
		q.subdivide()
	}

	for _, child := range q.children {
		if child.Insert(p) {
			return true
		}
	}
	return false
}

// subdivide splits the region into four equal quadrants and redistributes
// the points held so far, turning this node into an internal node.
func (q *QuadTree) subdivide() {
	hw, hh := q.boundary.W/2, q.boundary.H/2
	midX, midY := q.boundary.X+hw, q.boundary.Y+hh

	q.children[0] = NewQuadTree(Rect{q.boundary.X, q.boundary.Y, hw, hh})
	q.children[1] = NewQuadTree(Rect{midX, q.boundary.Y, hw, hh})
	q.children[2] = NewQuadTree(Rect{q.boundary.X, midY, hw, hh})
	q.children[3] = NewQuadTree(Rect{midX, midY, hw, hh})
	for _, child := range q.children {
		child.depth = q.depth + 1
	}

	for _, p := range q.points {
		for _, child := range q.children {
			if child.Insert(p) {
				break
			}
		}
	}
	q.points = nil
}

func (q *QuadTree) isLeaf() bool { return q.children[0] == nil }

// ForceOn evaluates the approximate repulsive force exerted on p by all
// mass in the tree, excluding p itself. k is the natural edge length of
// the force model and theta the Barnes-Hut accuracy threshold: a region
// whose width-to-distance ratio is below theta is treated as a single
// aggregate mass. Distances are floored at DistanceFloor.
func (q *QuadTree) ForceOn(p MassPoint, k, theta float64) (fx, fy float64) {
	if q.mass == 0 {
		return 0, 0
	}

	if q.isLeaf() {
		for _, pt := range q.points {
			if pt.ID == p.ID {
				continue
			}
			rfx, rfy := repel(p.X, p.Y, pt.X, pt.Y, pt.Mass, k)
			fx += rfx
			fy += rfy
		}
		return fx, fy
	}

	dx := q.comX - p.X
	dy := q.comY - p.Y
	d := math.Max(math.Hypot(dx, dy), DistanceFloor)

	if q.boundary.W/d < theta {
		return repel(p.X, p.Y, q.comX, q.comY, q.mass, k)
	}

	for _, child := range q.children {
		cfx, cfy := child.ForceOn(p, k, theta)
		fx += cfx
		fy += cfy
	}
	return fx, fy
}

// repel computes the repulsion exerted on (px, py) by a body of the given
// mass at (bx, by): magnitude k²·mass/d along the body→point axis.
func repel(px, py, bx, by, mass, k float64) (fx, fy float64) {
	dx := px - bx
	dy := py - by
	d := math.Max(math.Hypot(dx, dy), DistanceFloor)
	f := Repulsion(k, d) * mass
	return dx / d * f, dy / d * f
}

// Clear resets the tree to an empty leaf covering the same region.
func (q *QuadTree) Clear() {
	q.points = nil
	q.children = [4]*QuadTree{}
	q.comX, q.comY, q.mass = 0, 0, 0
}

// Stats walks the tree and returns diagnostic counters.
func (q *QuadTree) Stats() TreeStats {
	var s TreeStats
	q.collectStats(&s, 1)
	return s
}

func (q *QuadTree) collectStats(s *TreeStats, depth int) {
	s.Nodes++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if q.isLeaf() {
		s.Leaves++
		s.Points += len(q.points)
		return
	}
	for _, child := range q.children {
		child.collectStats(s, depth+1)
	}
}

// buildTree constructs a quadtree covering all given points. The region is
// the square bounding box of the points with 10% padding, so boundary
// insertions never fail.
func buildTree(points []MassPoint) *QuadTree {
	if len(points) == 0 {
		return NewQuadTree(Rect{W: 1, H: 1})
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	size := math.Max(maxX-minX, maxY-minY)
	if size == 0 {
		size = 1
	}
	pad := size * 0.1

	// Square region centered on the bounding box keeps quadrant
	// subdivision uniform.
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	half := size/2 + pad

	tree := NewQuadTree(Rect{X: cx - half, Y: cy - half, W: 2 * half, H: 2 * half})
	for _, p := range points {
		tree.Insert(p)
	}
	return tree
}
