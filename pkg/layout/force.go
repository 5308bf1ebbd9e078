package layout

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
)

// =============================================================================
// Physical Constants
// =============================================================================

// Force model constants. Together with the damping factor these determine the
// steady-state spacing: two connected nodes settle where the spring pull
// (Spring * d) balances the repulsion (Repulsion / d^2), i.e. near
// (Repulsion/Spring)^(1/3) units apart.
const (
	// Repulsion is the inverse-square repulsion strength between node pairs.
	Repulsion = 500.0

	// Spring is the linear attraction constant applied along edges.
	// Edge weight is deliberately not folded in; weight only scales line
	// thickness in the rendering layer.
	Spring = 0.01

	// Gravity is the centering pull toward the viewport center,
	// proportional to displacement.
	Gravity = 0.001

	// Damping is the multiplicative velocity decay applied every tick.
	Damping = 0.9

	// DefaultMaxTicks is the fixed tick cap. The damping factor's decay
	// rate makes this a safe upper bound for a resting layout without
	// analytic convergence detection.
	DefaultMaxTicks = 100

	// EdgeMargin keeps nodes this many units inside the viewport edges.
	EdgeMargin = 30.0

	// SeedJitter is the half-width of the uniform jitter box around the
	// viewport center used for initial positions.
	SeedJitter = 100.0

	// minDistance floors the pair distance to guard the division in the
	// repulsion term when nodes are (near-)coincident.
	minDistance = 1.0
)

// =============================================================================
// Simulator
// =============================================================================

// particle is the mutable kinematic state of one node. Position and velocity
// are owned exclusively by the simulator for the duration of a run.
type particle struct {
	id     string
	x, y   float64
	vx, vy float64
}

// spring is a resolved edge: indices into the particle slice. Edges whose
// endpoints are missing from the snapshot never become springs.
type spring struct {
	a, b int
}

// Simulator computes and continuously refines 2D positions for all nodes in
// a snapshot. It owns its node-state array, so multiple independent
// simulators can run concurrently without cross-talk.
//
// All methods are safe for concurrent use; the per-tick force computation
// itself is synchronous within a single Step call.
type Simulator struct {
	mu sync.Mutex

	width  float64
	height float64

	particles []particle
	springs   []spring

	tick     int
	maxTicks int
	done     bool

	seed uint64

	// convergence is an optional kinetic-energy early-exit threshold.
	// Zero disables it, preserving the fixed-tick behavior.
	convergence float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxTicks overrides the fixed tick cap.
func WithMaxTicks(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxTicks = n
		}
	}
}

// WithSeed fixes the random seed used for initial positions, making runs
// reproducible. Seed zero (the default) derives a seed from the clock.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.seed = seed }
}

// WithConvergence enables an early exit once the total kinetic energy
// (sum of squared velocities) falls below threshold. This is a pure
// performance optimization; it does not change the steady-state layout.
func WithConvergence(threshold float64) Option {
	return func(s *Simulator) {
		if threshold > 0 {
			s.convergence = threshold
		}
	}
}

// New creates a simulator. Call Seed before Step.
func New(opts ...Option) *Simulator {
	s := &Simulator{maxTicks: DefaultMaxTicks}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Lifecycle
// =============================================================================

// Seed initializes the simulator for a fresh snapshot and viewport.
//
// Every node gets a position uniformly at random within a jittered box of
// half-width SeedJitter around the viewport center, and zero velocity.
// Edges are resolved to particle indices once; edges referencing unknown
// node IDs are dropped silently. Seeding resets the tick counter, so any
// previous run is discarded (callers driving the simulator on a timer must
// cancel the old driver first).
func (s *Simulator) Seed(snap graph.Snapshot, width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = width
	s.height = height
	s.tick = 0
	s.done = false

	seed := s.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cx, cy := width/2, height/2
	s.particles = make([]particle, len(snap.Nodes))
	index := make(map[string]int, len(snap.Nodes))
	for i, n := range snap.Nodes {
		s.particles[i] = particle{
			id: n.ID,
			x:  cx + (rng.Float64()*2-1)*SeedJitter,
			y:  cy + (rng.Float64()*2-1)*SeedJitter,
		}
		index[n.ID] = i
	}

	s.springs = s.springs[:0]
	for _, e := range snap.Edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if !okA || !okB {
			continue // dangling edge, upstream data may still be partial
		}
		s.springs = append(s.springs, spring{a: a, b: b})
	}
}

// Step advances the simulation by one tick and reports whether the run is
// finished. Once finished (tick cap reached, converged, or cancelled),
// further calls are no-ops that keep returning true.
func (s *Simulator) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return true
	}

	s.stepLocked()
	s.tick++

	if s.tick >= s.maxTicks {
		s.done = true
	}
	if s.convergence > 0 && s.energyLocked() < s.convergence {
		s.done = true
	}
	return s.done
}

// Cancel stops the run immediately. Calling Cancel on an already-stopped
// simulator is a no-op.
func (s *Simulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
}

// =============================================================================
// Observation
// =============================================================================

// Positions returns the current position of every node. The returned slice
// is a copy taken at a tick boundary; consumers must treat it as read-only
// render input (mutations would be overwritten next tick anyway).
func (s *Simulator) Positions() []graph.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]graph.Position, len(s.particles))
	for i, p := range s.particles {
		out[i] = graph.Position{ID: p.id, X: p.x, Y: p.y}
	}
	return out
}

// Tick returns the number of completed ticks.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Done reports whether the run has finished.
func (s *Simulator) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// NodeCount returns the number of seeded nodes.
func (s *Simulator) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.particles)
}

// EdgeCount returns the number of resolved edges (dangling edges excluded).
func (s *Simulator) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.springs)
}

// Energy returns the total kinetic energy (sum of squared velocities).
// Damping guarantees this decays toward zero as the layout settles.
func (s *Simulator) Energy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.energyLocked()
}

// =============================================================================
// Force Computation
// =============================================================================

// stepLocked applies one full tick: repulsion, attraction, gravity, damping,
// integration, and boundary clamp. Callers must hold s.mu.
func (s *Simulator) stepLocked() {
	// Repulsion: every ordered pair is computed independently, so the
	// force each node receives from a pair is equal and opposite.
	for i := range s.particles {
		p := &s.particles[i]
		for j := range s.particles {
			if j == i {
				continue
			}
			q := &s.particles[j]
			dx := p.x - q.x
			dy := p.y - q.y
			d := math.Sqrt(dx*dx + dy*dy)
			if d < minDistance {
				d = minDistance
			}
			f := Repulsion / (d * d)
			p.vx += dx / d * f
			p.vy += dy / d * f
		}
	}

	// Attraction: each edge pulls both endpoints toward the other,
	// proportional to displacement. A self-loop contributes zero.
	for _, sp := range s.springs {
		a := &s.particles[sp.a]
		b := &s.particles[sp.b]
		ax, ay := a.x, a.y
		bx, by := b.x, b.y
		a.vx += (bx - ax) * Spring
		a.vy += (by - ay) * Spring
		b.vx += (ax - bx) * Spring
		b.vy += (ay - by) * Spring
	}

	// Gravity, damping, integration, clamp.
	cx, cy := s.width/2, s.height/2
	for i := range s.particles {
		p := &s.particles[i]
		p.vx += (cx - p.x) * Gravity
		p.vy += (cy - p.y) * Gravity

		p.vx *= Damping
		p.vy *= Damping

		p.x += p.vx
		p.y += p.vy

		// The clamp keeps nodes visible but does not zero velocity:
		// a node pressed against a wall keeps trying to move and gets
		// pulled back inward by the other forces next tick.
		p.x = clamp(p.x, EdgeMargin, s.width-EdgeMargin)
		p.y = clamp(p.y, EdgeMargin, s.height-EdgeMargin)
	}
}

func (s *Simulator) energyLocked() float64 {
	total := 0.0
	for i := range s.particles {
		p := &s.particles[i]
		total += p.vx*p.vx + p.vy*p.vy
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
