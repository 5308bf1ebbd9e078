package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kcirtapfromspace/chordmap/pkg/buildinfo"
	"github.com/kcirtapfromspace/chordmap/pkg/cache"
	"github.com/kcirtapfromspace/chordmap/pkg/pipeline"
	"github.com/kcirtapfromspace/chordmap/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "chordmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and loaded config.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := loadConfig("")
	c := &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("config file ignored", "err", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "chordmap",
		Short:        "Chordmap lays out music collaboration graphs",
		Long:         `Chordmap computes force-directed layouts for artist/label/track collaboration graphs, producing stable 2D positions for a rendering layer to draw.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use, wiring the cache backend
// and archive store from config.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope := c.Config.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	runner := pipeline.NewRunner(cch, keyer, c.Logger)

	if uri := c.Config.Store.MongoURI; uri != "" {
		st, err := store.NewMongoStore(ctx, uri, c.Config.Store.Database)
		if err != nil {
			// The archive is an optional extra; a layout run should not
			// fail because Mongo is down.
			c.Logger.Warn("layout archive unavailable", "err", err)
		} else {
			runner.Store = st
		}
	}

	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/chordmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags registers the shared run-parameter flags on cmd.
func (c *CLI) layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	if c.Config.Layout.Width > 0 {
		opts.Width = c.Config.Layout.Width
	}
	if c.Config.Layout.Height > 0 {
		opts.Height = c.Config.Layout.Height
	}

	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "viewport height")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", opts.Ticks, "tick cap (default: engine fixed cap)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random placement seed (0 = default seed)")
	cmd.Flags().Float64Var(&opts.Convergence, "convergence", opts.Convergence, "kinetic-energy early-exit threshold (0 = disabled)")
}
