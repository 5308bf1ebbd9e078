package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kcirtapfromspace/chordmap/pkg/cache"
	"github.com/kcirtapfromspace/chordmap/pkg/graph"
	"github.com/kcirtapfromspace/chordmap/pkg/store"
)

// Runner encapsulates pipeline execution with caching and optional archiving.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// run results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional layout archive; nil disables archiving
	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout holds the computed positions and run parameters.
	Layout graph.Layout

	// SnapshotHash is the content hash of the input snapshot.
	SnapshotHash string

	// RecordID is the archive record ID, when an archive store is configured.
	RecordID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the layout came from cache.
	CacheInfo CacheInfo
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the simulate → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snap graph.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	snapData, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}

	result := &Result{SnapshotHash: cache.Hash(snapData)}
	result.Stats.NodeCount = len(snap.Nodes)
	result.Stats.EdgeCount = len(snap.Edges)

	layoutStart := time.Now()
	l, hit, err := r.computeWithCache(ctx, snap, result.SnapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.Ticks = l.Ticks
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	opts.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"ticks", l.Ticks,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	if r.Store != nil && !hit {
		rec := store.NewRecord(result.SnapshotHash, l)
		if err := r.Store.Save(ctx, rec); err != nil {
			// Archiving is best-effort; the layout itself is still good.
			opts.Logger.Warn("archive layout failed", "err", err)
		} else {
			result.RecordID = rec.ID
		}
	}

	return result, nil
}

// computeWithCache returns the cached layout for this snapshot+options if
// present, computing and caching it otherwise.
func (r *Runner) computeWithCache(ctx context.Context, snap graph.Snapshot, snapshotHash string, opts Options) (graph.Layout, bool, error) {
	cacheKey := r.Keyer.LayoutKey(snapshotHash, opts.CacheKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			// Corrupt entry - fall through to recompute
		}
	}

	l := ComputeLayout(ctx, snap, opts)
	if err := ctx.Err(); err != nil {
		return l, false, err
	}

	if data, err := graph.MarshalLayout(l); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return l, false, nil
}

// ExecuteFile reads a snapshot file and runs the pipeline.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	snap, err := graph.ReadSnapshotFile(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return r.Execute(ctx, snap, opts)
}

// ReadSnapshotBytes decodes an in-memory snapshot, for API handlers.
func ReadSnapshotBytes(data []byte) (graph.Snapshot, error) {
	return graph.ReadSnapshot(bytes.NewReader(data))
}

// Close releases resources held by the runner (cache and archive store).
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
