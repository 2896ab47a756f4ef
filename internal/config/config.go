// Package config loads talkweave settings from defaults, an optional YAML
// file and TALKWEAVE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/aretw0/talkweave/internal/logging"
)

// Data formats accepted by data.format.
const (
	FormatYAML = "yaml"
	FormatLoam = "loam"
)

// Config is the complete application configuration.
type Config struct {
	Data     DataConfig     `koanf:"data"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	HTTP     HTTPConfig     `koanf:"http"`
	Log      LogConfig      `koanf:"log"`
	Generate GenerateConfig `koanf:"generate"`
}

// DataConfig locates the dialogue dataset.
type DataConfig struct {
	Path   string `koanf:"path"`
	Format string `koanf:"format"`
}

// RedisConfig enables the shared lookup cache when Addr is set.
type RedisConfig struct {
	Addr   string        `koanf:"addr"`
	Prefix string        `koanf:"prefix"`
	TTL    time.Duration `koanf:"ttl"`
}

// CacheConfig sizes the in-process lookup cache. Zero disables it.
type CacheConfig struct {
	Size int `koanf:"size"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// GenerateConfig bounds generation runs.
type GenerateConfig struct {
	MaxMatches    int `koanf:"max_matches"`
	MaxDepth      int `koanf:"max_depth"`
	ParallelForks int `koanf:"parallel_forks"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data:     DataConfig{Path: "dialogue.yaml", Format: FormatYAML},
		Redis:    RedisConfig{Prefix: "talkweave:", TTL: 10 * time.Minute},
		Cache:    CacheConfig{Size: 4096},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Generate: GenerateConfig{MaxMatches: 50, MaxDepth: -1, ParallelForks: 4},
	}
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Data.Format {
	case FormatYAML, FormatLoam:
	default:
		return fmt.Errorf("data.format: unknown format %q (want %s or %s)", c.Data.Format, FormatYAML, FormatLoam)
	}
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if c.Generate.MaxMatches < 0 {
		return fmt.Errorf("generate.max_matches must not be negative")
	}
	if c.Generate.ParallelForks < 0 {
		return fmt.Errorf("generate.parallel_forks must not be negative")
	}
	return nil
}
