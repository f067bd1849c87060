// Package config loads lifetree configuration.
//
// Settings come from three layers, later layers winning:
//
//  1. Defaults ([Default])
//  2. A TOML file, by default $XDG_CONFIG_HOME/lifetree/config.toml
//  3. LIFETREE_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[store]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	kind = "redis"
//	redis_addr = "localhost:6379"
//
//	[layout]
//	side_order = "registration"
//
//	[server]
//	addr = ":8080"
//	jwt_secret = "change-me"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/layout"
	"github.com/lifetree/lifetree/pkg/store"
	"github.com/lifetree/lifetree/pkg/timeline"
)

const appName = "lifetree"

// Cache backend kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// StoreConfig selects the graph store.
type StoreConfig struct {
	Kind        string `toml:"kind"` // mongo, http or file
	Path        string `toml:"path"`
	MongoURI    string `toml:"mongo_uri"`
	Database    string `toml:"database"`
	APIURL      string `toml:"api_url"`
	APIToken    string `toml:"api_token"`
	TrunkBranch string `toml:"trunk_branch"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Kind          string `toml:"kind"` // file, redis or none
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// LayoutConfig overrides layout geometry. Zero values keep the defaults.
type LayoutConfig struct {
	TrunkX      float64 `toml:"trunk_x"`
	SideX       float64 `toml:"side_x"`
	RowHeight   float64 `toml:"row_height"`
	OffsetY     float64 `toml:"offset_y"`
	HeaderLabel string  `toml:"header_label"`
	DateFormat  string  `toml:"date_format"`
	SideOrder   string  `toml:"side_order"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	JWTSecret      string   `toml:"jwt_secret"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TokenTTL       Duration `toml:"token_ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Config is the top-level configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// Duration is a time.Duration that decodes from strings like "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration: a snapshot file store, the
// file cache and the server on :8080.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Kind:        store.KindFile,
			Database:    store.DefaultDatabase,
			TrunkBranch: timeline.DefaultTrunkName,
		},
		Cache: CacheConfig{
			Kind:        CacheFile,
			RedisPrefix: appName + ":",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			TokenTTL: Duration{24 * time.Hour},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the XDG config directory for lifetree.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Path returns the default config file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads path (or the default path when empty) and applies environment
// overrides. A missing default file is not an error; a missing explicit
// file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown backend kinds and unusable settings.
func (c Config) Validate() error {
	if !store.ValidKind(c.Store.Kind) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.kind: unknown kind %q (want mongo, http or file)", c.Store.Kind)
	}
	switch c.Cache.Kind {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.kind: unknown kind %q (want file, redis or none)", c.Cache.Kind)
	}
	if c.Cache.Kind == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis cache")
	}
	if _, err := layout.ParseSideOrder(c.Layout.SideOrder); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// StoreOptions converts the store section for [store.Open].
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Kind:      c.Store.Kind,
		Path:      c.Store.Path,
		MongoURI:  c.Store.MongoURI,
		Database:  c.Store.Database,
		APIURL:    c.Store.APIURL,
		APIToken:  c.Store.APIToken,
		TrunkName: c.Store.TrunkBranch,
	}
}

// =============================================================================
// Environment
// =============================================================================

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = v; return nil }
}

func float(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

var envVars = []envVar{
	{"LIFETREE_STORE", str(func(c *Config) *string { return &c.Store.Kind })},
	{"LIFETREE_STORE_PATH", str(func(c *Config) *string { return &c.Store.Path })},
	{"LIFETREE_MONGO_URI", str(func(c *Config) *string { return &c.Store.MongoURI })},
	{"LIFETREE_MONGO_DATABASE", str(func(c *Config) *string { return &c.Store.Database })},
	{"LIFETREE_API_URL", str(func(c *Config) *string { return &c.Store.APIURL })},
	{"LIFETREE_API_TOKEN", str(func(c *Config) *string { return &c.Store.APIToken })},
	{"LIFETREE_TRUNK_BRANCH", str(func(c *Config) *string { return &c.Store.TrunkBranch })},
	{"LIFETREE_CACHE", str(func(c *Config) *string { return &c.Cache.Kind })},
	{"LIFETREE_CACHE_DIR", str(func(c *Config) *string { return &c.Cache.Dir })},
	{"LIFETREE_REDIS_ADDR", str(func(c *Config) *string { return &c.Cache.RedisAddr })},
	{"LIFETREE_REDIS_PASSWORD", str(func(c *Config) *string { return &c.Cache.RedisPassword })},
	{"LIFETREE_REDIS_DB", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Cache.RedisDB = n
		return err
	}},
	{"LIFETREE_TRUNK_X", float(func(c *Config) *float64 { return &c.Layout.TrunkX })},
	{"LIFETREE_SIDE_X", float(func(c *Config) *float64 { return &c.Layout.SideX })},
	{"LIFETREE_ROW_HEIGHT", float(func(c *Config) *float64 { return &c.Layout.RowHeight })},
	{"LIFETREE_SIDE_ORDER", str(func(c *Config) *string { return &c.Layout.SideOrder })},
	{"LIFETREE_ADDR", str(func(c *Config) *string { return &c.Server.Addr })},
	{"LIFETREE_JWT_SECRET", str(func(c *Config) *string { return &c.Server.JWTSecret })},
	{"LIFETREE_ALLOWED_ORIGINS", func(c *Config, v string) error {
		c.Server.AllowedOrigins = splitList(v)
		return nil
	}},
	{"LIFETREE_TOKEN_TTL", func(c *Config, v string) error {
		return c.Server.TokenTTL.UnmarshalText([]byte(v))
	}},
	{"LIFETREE_LOG_LEVEL", str(func(c *Config) *string { return &c.Log.Level })},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s=%q", ev.name, v)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String renders the configuration as TOML with secrets masked.
func (c Config) String() string {
	masked := c
	for _, s := range []*string{&masked.Store.APIToken, &masked.Cache.RedisPassword, &masked.Server.JWTSecret} {
		if *s != "" {
			*s = "********"
		}
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
