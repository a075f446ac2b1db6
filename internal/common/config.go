// Package common provides shared utilities for Corsair
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Corsair
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Ledger      LedgerConfig  `toml:"ledger"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds scrape client configurations
type ClientsConfig struct {
	Market  ScrapeConfig `toml:"market"`
	Profile ScrapeConfig `toml:"profile"`
}

// ScrapeConfig holds configuration for one upstream scrape target
type ScrapeConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ScrapeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// LedgerConfig holds flow and cache tuning for the ledger engine
type LedgerConfig struct {
	SessionTTL  string `toml:"session_ttl"`
	CatalogTTL  string `toml:"catalog_ttl"`
	MaxCrewSize int    `toml:"max_crew_size"`
}

// GetSessionTTL parses and returns the in-flight report session TTL
func (c *LedgerConfig) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetCatalogTTL parses and returns the commodity catalog cache TTL
func (c *LedgerConfig) GetCatalogTTL() time.Duration {
	d, err := time.ParseDuration(c.CatalogTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
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
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "corsair",
			Database:  "corsair",
		},
		Clients: ClientsConfig{
			Market: ScrapeConfig{
				BaseURL:   "https://uexcorp.space",
				RateLimit: 2,
				Timeout:   "10s",
			},
			Profile: ScrapeConfig{
				BaseURL:   "https://robertsspaceindustries.com",
				RateLimit: 2,
				Timeout:   "10s",
			},
		},
		Ledger: LedgerConfig{
			SessionTTL:  "15m",
			CatalogTTL:  "5m",
			MaxCrewSize: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CORSAIR_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CORSAIR_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CORSAIR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CORSAIR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("CORSAIR_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("CORSAIR_SURREAL_USER"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("CORSAIR_SURREAL_PASS"); pass != "" {
		config.Storage.Password = pass
	}
	if ns := os.Getenv("CORSAIR_SURREAL_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("CORSAIR_SURREAL_DATABASE"); db != "" {
		config.Storage.Database = db
	}

	if url := os.Getenv("CORSAIR_MARKET_URL"); url != "" {
		config.Clients.Market.BaseURL = url
	}
	if url := os.Getenv("CORSAIR_PROFILE_URL"); url != "" {
		config.Clients.Profile.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
