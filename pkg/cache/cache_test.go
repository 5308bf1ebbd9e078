package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	want := []byte(`{"positions":[]}`)

	if err := c.Set(ctx, "layout:abc", want, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want hit")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	_, ok, err := c.Get(context.Background(), "never-set")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for unknown key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for expired entry")
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "pinned", []byte("x"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, ok, err := c.Get(ctx, "pinned")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "doomed", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "doomed"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "doomed"); ok {
		t.Error("entry survived Delete()")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "doomed"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestNullCacheNeverHits(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("NullCache returned a hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLayoutKeyDeterministic(t *testing.T) {
	k := NewDefaultKeyer()
	opts := LayoutKeyOpts{Width: 800, Height: 600, Ticks: 100, Seed: 42}

	a := k.LayoutKey("hash1", opts)
	b := k.LayoutKey("hash1", opts)
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
}

func TestLayoutKeyVariesWithInputs(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Width: 800, Height: 600, Ticks: 100, Seed: 42}
	baseKey := k.LayoutKey("hash1", base)

	tests := []struct {
		name string
		hash string
		opts LayoutKeyOpts
	}{
		{"SnapshotHash", "hash2", base},
		{"Width", "hash1", LayoutKeyOpts{Width: 1024, Height: 600, Ticks: 100, Seed: 42}},
		{"Height", "hash1", LayoutKeyOpts{Width: 800, Height: 768, Ticks: 100, Seed: 42}},
		{"Ticks", "hash1", LayoutKeyOpts{Width: 800, Height: 600, Ticks: 200, Seed: 42}},
		{"Seed", "hash1", LayoutKeyOpts{Width: 800, Height: 600, Ticks: 100, Seed: 43}},
		{"Convergence", "hash1", LayoutKeyOpts{Width: 800, Height: 600, Ticks: 100, Seed: 42, Convergence: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.LayoutKey(tt.hash, tt.opts); got == baseKey {
				t.Error("changed input produced an identical key")
			}
		})
	}
}

func TestScopedKeyerPrefixes(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant42:")
	opts := LayoutKeyOpts{Width: 800, Height: 600}

	got := scoped.LayoutKey("hash1", opts)
	want := "tenant42:" + inner.LayoutKey("hash1", opts)
	if got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	if got := scoped.LayoutKey("h", LayoutKeyOpts{}); got[:2] != "p:" {
		t.Errorf("LayoutKey() = %q, want prefix %q", got, "p:")
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("snapshot-bytes"))
	b := Hash([]byte("snapshot-bytes"))
	if a != b {
		t.Errorf("Hash() not deterministic: %q vs %q", a, b)
	}
	if a == Hash([]byte("other-bytes")) {
		t.Error("distinct inputs hashed identically")
	}
	if len(a) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex chars", len(a))
	}
}
