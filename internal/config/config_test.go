package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/talkweave/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talkweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
data:
  path: ./content
  format: loam
redis:
  addr: localhost:6379
  ttl: 1h
generate:
  max_depth: 3
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./content", cfg.Data.Path)
	assert.Equal(t, config.FormatLoam, cfg.Data.Format)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 3, cfg.Generate.MaxDepth)
	// Untouched keys keep their defaults.
	assert.Equal(t, "talkweave:", cfg.Redis.Prefix)
	assert.Equal(t, 50, cfg.Generate.MaxMatches)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "http:\n  addr: \":9000\"\n")
	t.Setenv("TALKWEAVE_HTTP_ADDR", ":9100")
	t.Setenv("TALKWEAVE_GENERATE_MAX_MATCHES", "5")
	t.Setenv("TALKWEAVE_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.Generate.MaxMatches)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"format":   func(c *config.Config) { c.Data.Format = "csv" },
		"path":     func(c *config.Config) { c.Data.Path = "" },
		"level":    func(c *config.Config) { c.Log.Level = "loud" },
		"logfmt":   func(c *config.Config) { c.Log.Format = "xml" },
		"cache":    func(c *config.Config) { c.Cache.Size = -1 },
		"ttl":      func(c *config.Config) { c.Redis.TTL = -time.Second },
		"matches":  func(c *config.Config) { c.Generate.MaxMatches = -1 },
		"parallel": func(c *config.Config) { c.Generate.ParallelForks = -2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, config.Default().Validate())
}
