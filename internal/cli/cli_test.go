package cli

import (
	"context"
	"io"
	"testing"

	"github.com/kcirtapfromspace/chordmap/pkg/cache"
)

func testCLI(cfg Config) *CLI {
	return &CLI{
		Logger: newLogger(io.Discard, LogInfo),
		Config: cfg,
	}
}

func TestNewRunnerDefaultKeyer(t *testing.T) {
	c := testCLI(defaultConfig())

	runner, err := c.newRunner(context.Background(), true)
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	defer runner.Close()

	if _, ok := runner.Keyer.(*cache.DefaultKeyer); !ok {
		t.Errorf("Keyer = %T, want *cache.DefaultKeyer", runner.Keyer)
	}
}

func TestNewRunnerScopedKeyer(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.Scope = "tenant42"
	c := testCLI(cfg)

	runner, err := c.newRunner(context.Background(), true)
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	defer runner.Close()

	if _, ok := runner.Keyer.(*cache.ScopedKeyer); !ok {
		t.Fatalf("Keyer = %T, want *cache.ScopedKeyer", runner.Keyer)
	}

	got := runner.Keyer.LayoutKey("hash1", cache.LayoutKeyOpts{Width: 800, Height: 600})
	want := "tenant42:" + cache.NewDefaultKeyer().LayoutKey("hash1", cache.LayoutKeyOpts{Width: 800, Height: 600})
	if got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
}
