package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "sim", cfg.Quote.Provider)
	assert.Equal(t, "10000", cfg.Auth.StartingCash)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "missing listen",
			mutate: func(c *Config) { c.Server.Listen = "" },
			errMsg: "server.listen is required",
		},
		{
			name:   "missing db path",
			mutate: func(c *Config) { c.Ledger.DBPath = "" },
			errMsg: "ledger.db_path is required",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.Quote.Provider = "carrier-pigeon" },
			errMsg: "quote.provider must be 'sim' or 'http'",
		},
		{
			name:   "http provider without base url",
			mutate: func(c *Config) { c.Quote.Provider = "http" },
			errMsg: "quote.base_url required for http provider",
		},
		{
			name:   "negative cache ttl",
			mutate: func(c *Config) { c.Quote.CacheTTL = "-1s" },
			errMsg: "quote.cache_ttl must not be negative",
		},
		{
			name:   "bad timeout",
			mutate: func(c *Config) { c.Quote.Timeout = "soon" },
			errMsg: "quote.timeout: bad duration",
		},
		{
			name:   "bad starting cash",
			mutate: func(c *Config) { c.Auth.StartingCash = "lots" },
			errMsg: "auth.starting_cash must be a positive decimal",
		},
		{
			name:   "negative starting cash",
			mutate: func(c *Config) { c.Auth.StartingCash = "-5" },
			errMsg: "auth.starting_cash must be a positive decimal",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brokerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen: ":9090"
  session_secret: "test-secret"
quote:
  provider: http
  base_url: "http://quotes.local"
  cache_ttl: 5s
auth:
  starting_cash: "2500.50"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "http", cfg.Quote.Provider)
	assert.Equal(t, "http://quotes.local", cfg.Quote.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Quote.CacheTTLDuration())
	assert.Equal(t, "2500.5", cfg.Auth.StartingCashDecimal().String())
	// untouched defaults survive
	assert.Equal(t, "./brokerd.sqlite", cfg.Ledger.DBPath)
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brokerd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"listen": ":7070"},
		"ledger": {"db_path": "/tmp/x.sqlite"}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "/tmp/x.sqlite", cfg.Ledger.DBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BROKERD_LISTEN", ":6060")
	t.Setenv("BROKERD_DB", "/tmp/env.sqlite")
	t.Setenv("BROKERD_STARTING_CASH", "777")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Listen)
	assert.Equal(t, "/tmp/env.sqlite", cfg.Ledger.DBPath)
	assert.Equal(t, "777", cfg.Auth.StartingCash)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
