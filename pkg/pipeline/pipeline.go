// Package pipeline provides the load → simulate → export pipeline for Chordmap.
//
// This package implements the complete flow shared by the CLI, the HTTP
// service, and the terminal watcher: take a graph snapshot, run the
// force-directed simulation to completion, and produce a serializable layout.
// Centralizing this logic keeps behavior consistent across entry points.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Width: 800, Height: 600}
//	result, err := runner.Execute(ctx, snapshot, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	positions := result.Layout.Positions
//
// Compute without caching:
//
//	l := pipeline.ComputeLayout(ctx, snapshot, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kcirtapfromspace/chordmap/pkg/cache"
	"github.com/kcirtapfromspace/chordmap/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in canvas units.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in canvas units.
	DefaultHeight = 600.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a layout run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Ticks overrides the fixed tick cap. Zero keeps the engine default.
	Ticks int `json:"ticks,omitempty"`

	// Seed fixes the random placement seed. Zero selects DefaultSeed.
	Seed uint64 `json:"seed,omitempty"`

	// Convergence enables the optional kinetic-energy early exit when
	// positive. Zero (the default) runs the full tick count.
	Convergence float64 `json:"convergence,omitempty"`

	// Refresh bypasses the cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidViewport, "viewport %gx%g must not be negative", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// CacheKeyOpts returns the cache key options for this run.
func (o *Options) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		Ticks:       o.Ticks,
		Seed:        o.Seed,
		Convergence: o.Convergence,
	}
}

// =============================================================================
// Result
// =============================================================================

// Stats contains execution statistics for a run.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Ticks      int
	LayoutTime time.Duration
}

// CacheInfo tracks whether the result came from cache.
type CacheInfo struct {
	LayoutHit bool
}
