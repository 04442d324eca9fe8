// Package config loads the heightchart TOML configuration.
//
// Every default lives here; commands build their components from a loaded
// [Config] and then apply flag overrides. A missing file at the default
// location is not an error, a missing file named explicitly is.
//
// Example file:
//
//	[board]
//	rows = 27
//	baseline = 180.0
//	scaling_factor = 1.25
//	breakpoint = 768.0
//	debounce = "150ms"
//
//	[compression]
//	min = 1.0
//	max = 1.5
//
//	[history]
//	depth = 50
//
//	[server]
//	addr = ":8080"
//
//	[share]
//	endpoint = "http://localhost:8080/api/share"
//	store = "redis"
//	[share.redis]
//	addr = "localhost:6379"
//
//	[cache]
//	backend = "file"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/share"
	"github.com/matzehuels/heightchart/pkg/store"
)

// AppName names the configuration and cache directories.
const AppName = "heightchart"

// Backend names accepted by [Share.Store] and [Cache.Backend].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the whole file.
type Config struct {
	Board       board.Config `toml:"board"`
	Compression Compression  `toml:"compression"`
	History     History      `toml:"history"`
	Server      Server       `toml:"server"`
	Share       Share        `toml:"share"`
	Cache       Cache        `toml:"cache"`
}

// Compression overrides the bounds of both strategies. Zero values keep
// the per-strategy settings from [board].
type Compression struct {
	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Step float64 `toml:"step"`
}

// History configures the avatar store.
type History struct {
	Depth   int     `toml:"depth"`
	ZoomMin float64 `toml:"zoom_min"`
	ZoomMax float64 `toml:"zoom_max"`
}

// Server configures `heightchart serve`.
type Server struct {
	Addr         string        `toml:"addr"`
	Origin       string        `toml:"origin"` // used for share links
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	AssetsRoot   string        `toml:"assets_root"` // local avatar assets; empty disables file locators
}

// Share configures the share client and the share server store.
type Share struct {
	Endpoint string            `toml:"endpoint"`
	Origin   string            `toml:"origin"`
	Store    string            `toml:"store"`
	Dir      string            `toml:"dir"`
	TTL      time.Duration     `toml:"ttl"`
	Redis    share.RedisConfig `toml:"redis"`
	Mongo    share.MongoConfig `toml:"mongo"`
}

// Cache configures the asset and share-link cache.
type Cache struct {
	Backend string             `toml:"backend"`
	Dir     string             `toml:"dir"`
	TTL     time.Duration      `toml:"ttl"`
	Redis   cache.RedisOptions `toml:"redis"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Board: board.DefaultConfig(),
		History: History{
			Depth:   store.DefaultHistoryDepth,
			ZoomMin: store.DefaultZoomMin,
			ZoomMax: store.DefaultZoomMax,
		},
		Server: Server{
			Addr:         ":8080",
			Origin:       "http://localhost:8080/",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Share: Share{
			Endpoint: "http://localhost:8080/api/share",
			Origin:   "http://localhost:8080/",
			Store:    BackendMemory,
			TTL:      share.DefaultTTL,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     cache.ColorizeTTL,
		},
	}
}

// Load reads path over the defaults. An empty path reads [DefaultPath] if it
// exists.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes data over base.
func Parse(data []byte, base Config) (Config, error) {
	md, err := toml.Decode(string(data), &base)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return base, base.Validate()
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	cp := c.Compression
	if cp.Min < 0 || cp.Max < 0 || cp.Step < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "compression values must not be negative")
	}
	if cp.Min > 0 && cp.Max > 0 && cp.Min > cp.Max {
		return errors.New(errors.ErrCodeInvalidConfig, "compression min %v exceeds max %v", cp.Min, cp.Max)
	}
	if h := c.History; h.ZoomMin > 0 && h.ZoomMax > 0 && h.ZoomMin > h.ZoomMax {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom_min %v exceeds zoom_max %v", h.ZoomMin, h.ZoomMax)
	}
	if !slices.Contains([]string{BackendMemory, BackendFile, BackendRedis, BackendMongo}, c.Share.Store) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown share store %q", c.Share.Store)
	}
	if !slices.Contains([]string{BackendNone, BackendMemory, BackendFile, BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// BoardConfig returns the board settings with the [compression] overrides
// applied to both strategies.
func (c Config) BoardConfig() board.Config {
	bc := c.Board.WithDefaults()
	apply := func(m *board.Metrics) {
		b := m.Bounds
		if c.Compression.Min > 0 {
			b.Min = c.Compression.Min
		}
		if c.Compression.Max > 0 {
			b.Max = c.Compression.Max
		}
		if b.Valid() {
			m.Bounds = b
		}
		if c.Compression.Step > 0 {
			m.Step = c.Compression.Step
		}
	}
	apply(&bc.Desktop)
	apply(&bc.Mobile)
	return bc
}

// StoreOptions returns the store options for [History].
func (c Config) StoreOptions() []store.Option {
	opts := []store.Option{store.WithZoomRange(c.History.ZoomMin, c.History.ZoomMax)}
	if c.History.Depth > 0 {
		opts = append(opts, store.WithHistoryDepth(c.History.Depth))
	}
	return opts
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/heightchart/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory or the XDG default
// (~/.cache/heightchart/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// ShareDir returns the directory for the file share store.
func (c Config) ShareDir() (string, error) {
	if c.Share.Dir != "" {
		return c.Share.Dir, nil
	}
	dir, err := c.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shares"), nil
}
