// Package layout implements the force-directed engine that positions
// collaboration-graph nodes for interactive exploration.
//
// The engine is an iterative physical simulation advanced in discrete ticks.
// Each tick applies four force terms to every node's velocity, then
// integrates and clamps positions:
//
//  1. Inverse-square repulsion between every pair of nodes
//  2. Linear spring attraction along every resolved edge
//  3. A weak centering pull toward the viewport center
//  4. Multiplicative damping, so motion decays to a resting layout
//
// A Simulator owns all kinematic state for one snapshot. Seeding is a full
// restart: there is no incremental diffing between snapshots. The simulator
// runs a fixed number of ticks (DefaultMaxTicks) and then stops; an optional
// kinetic-energy early exit can be enabled with WithConvergence.
//
// Stepping is decoupled from scheduling. Tests and batch callers invoke
// Step in a tight loop; interactive hosts use a Driver, which advances the
// simulator on a fixed-period timer and supports immediate, idempotent
// cancellation.
//
// The engine favors self-healing numerical guards over errors: coincident
// nodes are held apart by a distance floor, dangling edges are dropped at
// seed time, and an empty snapshot degenerates to harmless no-op ticks.
// Positions are always finite and inside the viewport margins.
package layout
