package layout

import (
	"context"
	"sync"
	"time"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
)

// DefaultInterval is the default tick period for timer-driven runs.
const DefaultInterval = 50 * time.Millisecond

// TickFunc is invoked after every tick with the completed tick count and the
// positions snapshot taken at that tick boundary.
type TickFunc func(tick int, positions []graph.Position)

// =============================================================================
// Driver - Timer-Driven Scheduling
// =============================================================================

// Driver advances a Simulator on a fixed-period timer so the host stays
// responsive between ticks. Only one run is active per driver: starting a
// new run cancels any outstanding scheduled ticks for the previous one
// before the first new tick fires.
//
// Cancellation is immediate and idempotent; cancelling a driver with no
// active run is a no-op. Batch callers that don't need pacing should skip
// the driver and call Simulator.Step in a loop instead.
type Driver struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a driver with the given tick period.
// A non-positive interval falls back to DefaultInterval.
func NewDriver(interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{interval: interval}
}

// Start begins advancing sim on the driver's timer, cancelling any run still
// in flight first. onTick may be nil. The run ends when the simulator
// reports done, the context is cancelled, or Cancel is called.
func (d *Driver) Start(ctx context.Context, sim *Simulator, onTick TickFunc) {
	d.Cancel()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	d.mu.Lock()
	d.cancel = cancel
	d.done = done
	d.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				sim.Cancel()
				return
			case <-ticker.C:
				finished := sim.Step()
				if onTick != nil {
					onTick(sim.Tick(), sim.Positions())
				}
				if finished {
					return
				}
			}
		}
	}()
}

// Cancel stops the active run and waits until no tick is pending.
// Calling Cancel twice in a row, or with no active run, is a no-op.
func (d *Driver) Cancel() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the active run finishes (naturally or via Cancel).
// It returns immediately if no run is active.
func (d *Driver) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()

	if done != nil {
		<-done
	}
}
