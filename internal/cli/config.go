package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Config - TOML Configuration File
// =============================================================================

// Config is the on-disk configuration, loaded from
// ~/.config/chordmap/config.toml (or $XDG_CONFIG_HOME/chordmap/config.toml).
// Flags override anything set here. A missing file yields pure defaults.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
	Serve  ServeConfig  `toml:"serve"`
}

// CacheConfig selects the layout-cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// Scope prefixes all cache keys, giving deployments that share a
	// backend (several instances on one redis) separate namespaces.
	Scope string `toml:"scope"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is the optional redis password.
	RedisPassword string `toml:"redis_password"`

	// RedisDB is the redis database index.
	RedisDB int `toml:"redis_db"`
}

// StoreConfig configures the optional Mongo-backed layout archive.
// Leaving MongoURI empty disables archiving.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// LayoutConfig holds default run parameters.
type LayoutConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ServeConfig holds HTTP server defaults.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{Backend: "file"},
		Store: StoreConfig{Database: "chordmap"},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Re-apply defaults the file may have blanked.
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Store.Database == "" {
		cfg.Store.Database = "chordmap"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}

	return cfg, nil
}

// configPath returns the config file location using the XDG standard.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
