// Package config loads the brokerd configuration from a YAML or JSON
// file with environment variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the complete brokerd configuration.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
	Quote  QuoteConfig  `json:"quote" yaml:"quote"`
	Auth   AuthConfig   `json:"auth" yaml:"auth"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Listen        string `json:"listen" yaml:"listen" env:"BROKERD_LISTEN"`
	SessionSecret string `json:"session_secret" yaml:"session_secret" env:"BROKERD_SESSION_SECRET"`
	LogLevel      string `json:"log_level" yaml:"log_level" env:"BROKERD_LOG_LEVEL"`
}

// LedgerConfig controls the SQLite store.
type LedgerConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" env:"BROKERD_DB"`
}

// QuoteConfig selects and tunes the quote provider. Durations are
// strings ("10s", "1m") so the same value works in YAML, JSON, and
// the environment.
type QuoteConfig struct {
	Provider string `json:"provider" yaml:"provider" env:"BROKERD_QUOTE_PROVIDER"` // "sim" or "http"
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" env:"BROKERD_QUOTE_URL"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty" env:"BROKERD_QUOTE_API_KEY"`
	Timeout  string `json:"timeout" yaml:"timeout" env:"BROKERD_QUOTE_TIMEOUT"`
	CacheTTL string `json:"cache_ttl" yaml:"cache_ttl" env:"BROKERD_QUOTE_CACHE_TTL"`
}

// TimeoutDuration parses the provider timeout.
func (q QuoteConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(q.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CacheTTLDuration parses the quote cache TTL. Zero disables caching.
func (q QuoteConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(q.CacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// AuthConfig controls registration.
type AuthConfig struct {
	StartingCash string `json:"starting_cash" yaml:"starting_cash" env:"BROKERD_STARTING_CASH"`
	BcryptCost   int    `json:"bcrypt_cost" yaml:"bcrypt_cost" env:"BROKERD_BCRYPT_COST"`
}

// StartingCashDecimal parses the configured starting balance.
func (a AuthConfig) StartingCashDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(a.StartingCash)
	if err != nil {
		return decimal.NewFromInt(10000)
	}
	return d
}

// Load builds the effective configuration: defaults, then the file at
// path (if any), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path is required")
	}
	switch c.Quote.Provider {
	case "sim":
	case "http":
		if c.Quote.BaseURL == "" {
			return fmt.Errorf("quote.base_url required for http provider")
		}
	default:
		return fmt.Errorf("quote.provider must be 'sim' or 'http'")
	}
	for name, raw := range map[string]string{
		"quote.timeout":   c.Quote.Timeout,
		"quote.cache_ttl": c.Quote.CacheTTL,
	} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: bad duration %q", name, raw)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if d, err := decimal.NewFromString(c.Auth.StartingCash); err != nil || !d.IsPositive() {
		return fmt.Errorf("auth.starting_cash must be a positive decimal")
	}
	return nil
}

// Default returns a configuration with sensible defaults. The session
// secret has no default; it must come from the file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:   ":8080",
			LogLevel: "info",
		},
		Ledger: LedgerConfig{
			DBPath: "./brokerd.sqlite",
		},
		Quote: QuoteConfig{
			Provider: "sim",
			Timeout:  "10s",
			CacheTTL: "30s",
		},
		Auth: AuthConfig{
			StartingCash: "10000",
			BcryptCost:   0, // bcrypt default
		},
	}
}
