// Package common provides shared utilities for the total return service
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the service
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Prices      PricesConfig  `toml:"prices"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// PricesConfig selects and tunes the market data provider.
type PricesConfig struct {
	// Provider is "yahoo" (default, no key required) or "eodhd".
	Provider string `toml:"provider"`
	// APIKey is required for eodhd; ignored by yahoo.
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
	// QuoteTTL and HistoryTTL bound how long cached prices are served.
	QuoteTTL   string `toml:"quote_ttl"`
	HistoryTTL string `toml:"history_ttl"`
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *PricesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetQuoteTTL parses and returns the live quote cache TTL.
func (c *PricesConfig) GetQuoteTTL() time.Duration {
	d, err := time.ParseDuration(c.QuoteTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetHistoryTTL parses and returns the daily history cache TTL.
func (c *PricesConfig) GetHistoryTTL() time.Duration {
	d, err := time.ParseDuration(c.HistoryTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/totalreturn",
		},
		Prices: PricesConfig{
			Provider:   "yahoo",
			RateLimit:  5,
			Timeout:    "30s",
			QuoteTTL:   "15m",
			HistoryTTL: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML config file over the defaults, then applies
// environment overrides. A missing file is not an error — the defaults
// plus environment are a complete configuration.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides lets deployment environments override file settings.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("TOTALRETURN_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("TOTALRETURN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("TOTALRETURN_DATA"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("TOTALRETURN_PRICE_PROVIDER"); v != "" {
		config.Prices.Provider = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		config.Prices.APIKey = v
	}
	if v := os.Getenv("TOTALRETURN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
