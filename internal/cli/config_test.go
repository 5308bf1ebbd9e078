package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "file")
	}
	if cfg.Store.Database != "chordmap" {
		t.Errorf("Store.Database = %q, want %q", cfg.Store.Database, "chordmap")
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":8080")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cache]
backend = "redis"
scope = "staging"
redis_addr = "localhost:6379"
redis_db = 2

[store]
mongo_uri = "mongodb://localhost:27017"

[layout]
width = 1024.0
height = 768.0

[serve]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
	if cfg.Cache.Scope != "staging" {
		t.Errorf("Cache.Scope = %q, want %q", cfg.Cache.Scope, "staging")
	}
	if cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("Store.MongoURI = %q", cfg.Store.MongoURI)
	}
	if cfg.Store.Database != "chordmap" {
		t.Errorf("Store.Database = %q, want default re-applied", cfg.Store.Database)
	}
	if cfg.Layout.Width != 1024 || cfg.Layout.Height != 768 {
		t.Errorf("layout config = %+v", cfg.Layout)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[layout]\nwidth = 640.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Layout.Width != 640 {
		t.Errorf("Layout.Width = %g, want 640", cfg.Layout.Width)
	}
	if cfg.Cache.Backend != "file" || cfg.Serve.Addr != ":8080" {
		t.Error("unset sections lost their defaults")
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache\nbackend = file"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err == nil {
		t.Fatal("loadConfig() accepted malformed TOML")
	}
	// Even on parse failure the caller gets usable defaults.
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want default on parse error", cfg.Cache.Backend)
	}
}
