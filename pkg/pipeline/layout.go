package pipeline

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
	"github.com/kcirtapfromspace/chordmap/pkg/layout"
	"github.com/kcirtapfromspace/chordmap/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout seeds a simulator from the snapshot and steps it to
// completion synchronously. This is the batch entry point; interactive hosts
// that want pacing between ticks use layout.Driver instead.
//
// The computation never fails: malformed snapshots degrade to fewer resolved
// edges or a no-op run, matching the engine's ignore-and-continue policy.
// Callers must have applied option defaults first.
func ComputeLayout(ctx context.Context, snap graph.Snapshot, opts Options) graph.Layout {
	sim := NewSimulator(opts)
	sim.Seed(snap, opts.Width, opts.Height)

	observability.Layout().OnRunStart(ctx, sim.NodeCount(), sim.EdgeCount())
	start := time.Now()

	for !sim.Step() {
		// Cooperative cancellation between ticks; a cancelled run keeps
		// whatever positions it had reached.
		if ctx.Err() != nil {
			sim.Cancel()
			observability.Layout().OnRunCancelled(ctx, sim.Tick())
			break
		}
	}

	observability.Layout().OnRunComplete(ctx, sim.Tick(), time.Since(start), ctx.Err())

	return graph.Layout{
		Width:     opts.Width,
		Height:    opts.Height,
		Seed:      opts.Seed,
		Ticks:     sim.Tick(),
		Positions: sim.Positions(),
	}
}

// NewSimulator builds a simulator configured from pipeline options.
// Shared by the batch path above and the interactive watcher.
func NewSimulator(opts Options) *layout.Simulator {
	simOpts := []layout.Option{layout.WithSeed(opts.Seed)}
	if opts.Ticks > 0 {
		simOpts = append(simOpts, layout.WithMaxTicks(opts.Ticks))
	}
	if opts.Convergence > 0 {
		simOpts = append(simOpts, layout.WithConvergence(opts.Convergence))
	}
	return layout.New(simOpts...)
}
