// Package layout implements WordMiro's force-directed graph layout engine.
//
// The engine runs a fixed number of relaxation iterations over the whole
// graph. Every pair of nodes repels (k²/d); nodes joined by an edge also
// attract (d²/k). A multiplicatively decaying temperature bounds the
// displacement applied per node per iteration, and positions are clamped
// to the caller's canvas bounds after every step.
//
// Repulsion is computed exactly over all pairs for small graphs and
// through a Barnes-Hut quadtree ([QuadTree]) above a node-count
// threshold, turning the O(N²) all-pairs sum into O(N log N) at an
// accuracy cost controlled by theta.
//
// # Scheduling
//
// The relaxation loop is cooperative, not parallel. [Simulation] exposes
// one iteration as a resumable [Simulation.Step]; [Engine.Apply] drives
// it to completion, yielding the processor whenever a time slice is
// exhausted and checking for cancellation at the top of every iteration.
// A cancelled run is a normal termination path: whatever positions have
// been written so far are left in place.
//
// The engine contains no randomness: for a fixed input ordering, bounds
// and iteration count, the output is deterministic. Node positions are
// the only state it mutates; edges are never touched.
package layout
