// Package config loads wordmiro configuration from a TOML file.
//
// The default location is ~/.config/wordmiro/config.toml; every field
// has a working default so the file is optional. Values flow into the
// expansion client, the layout engine, the cache, and the store.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/DELAxGithub/wordmiro/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	Service ServiceConfig `toml:"service"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
}

// ServiceConfig configures the external expansion service.
type ServiceConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	MaxRelated int    `toml:"max_related"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// CanvasConfig sets the layout canvas dimensions.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LayoutConfig tunes the force simulation.
type LayoutConfig struct {
	Iterations int     `toml:"iterations"`
	K          float64 `toml:"k"`
	Theta      float64 `toml:"theta"`
}

// CacheConfig selects and configures a cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	TTLHours  int    `toml:"ttl_hours"`
	RedisAddr string `toml:"redis_addr"`
}

// StoreConfig configures graph persistence.
type StoreConfig struct {
	// Dir holds JSON graph files for the CLI.
	Dir string `toml:"dir"`
	// MongoURI enables the Mongo store when non-empty (server mode).
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			Model:      "gpt-4o-mini",
			MaxRelated: 12,
			TimeoutSec: 30,
		},
		Canvas: CanvasConfig{Width: 1600, Height: 1200},
		Layout: LayoutConfig{Iterations: 150, K: 100, Theta: 0.5},
		Cache: CacheConfig{
			Backend:  "file",
			TTLHours: 24,
		},
		Store: StoreConfig{Database: "wordmiro"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wordmiro", "config.toml")
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file is not an error; defaults apply. Fields the
// file omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the rest of the system
// cannot work with.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive (got %gx%g)", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Layout.Iterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout iterations must be positive (got %d)", c.Layout.Iterations)
	}
	if c.Layout.K <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout k must be positive (got %g)", c.Layout.K)
	}
	if c.Layout.Theta < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout theta cannot be negative (got %g)", c.Layout.Theta)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (valid: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis cache backend requires redis_addr")
	}
	if c.Service.BaseURL != "" {
		if err := errors.ValidateURL(c.Service.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// ServiceTimeout returns the expansion service timeout as a duration.
func (c Config) ServiceTimeout() time.Duration {
	return time.Duration(c.Service.TimeoutSec) * time.Second
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
