// Package config loads the famtools configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/famtools/config.toml
// (~/.config/famtools/config.toml when XDG_CONFIG_HOME is unset):
//
//	factorio_dir = "/home/me/.factorio"
//	mods_dir     = "/srv/factorio/mods"
//	portal_url   = "https://mods.factorio.com"
//
//	[cache]
//	backend    = "redis"      # file (default), redis or none
//	ttl        = "12h"
//	redis_addr = "localhost:6379"
//
//	[download]
//	verify = true
//
// Every key is optional. Command-line flags take precedence over the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/famtools/pkg/cache"
	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/integrations/modportal"
)

const appName = "famtools"

// FileName is the base name of the configuration file.
const FileName = "config.toml"

// Config is the decoded configuration file.
type Config struct {
	// FactorioDir is the game's user data directory. Empty means the
	// platform default.
	FactorioDir string `toml:"factorio_dir"`

	// ModsDir overrides <FactorioDir>/mods.
	ModsDir string `toml:"mods_dir"`

	// PortalURL is the mod portal root.
	PortalURL string `toml:"portal_url"`

	Cache    CacheConfig    `toml:"cache"`
	Download DownloadConfig `toml:"download"`
}

// CacheConfig configures the portal metadata cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
}

// DownloadConfig configures archive downloads.
type DownloadConfig struct {
	Verify bool `toml:"verify"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

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
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		PortalURL: modportal.DefaultBaseURL,
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLPortal},
		},
		Download: DownloadConfig{Verify: true},
	}
}

// Path returns the default location of the configuration file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config directory")
	}
	return filepath.Join(home, ".config", appName, FileName), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/famtools/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration at path. Keys absent from the file keep
// their defaults, and a missing file yields [Default]. Unknown keys and
// invalid values are reported as INVALID_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var backends = []string{cache.BackendFile, cache.BackendRedis, cache.BackendNone}

// Validate checks field values.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of %s, got %q",
			strings.Join(backends, ", "), c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	u, err := url.Parse(c.PortalURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "portal_url %q is not an http(s) URL", c.PortalURL)
	}
	return nil
}

// CacheOptions translates the [cache] table into backend options rooted
// at dir.
func (c *Config) CacheOptions(dir string) cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       dir,
		RedisAddr: c.Cache.RedisAddr,
	}
}
