package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
//
// Allowed roots are deliberately absent here: they arrive as positional
// command-line arguments and are canonicalized once at startup.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Limits  LimitsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8700"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// LimitsConfig bounds per-request filesystem work.
type LimitsConfig struct {
	MaxSearchResults int   `envconfig:"MAX_SEARCH_RESULTS" default:"1000"`
	MaxReadBytes     int64 `envconfig:"MAX_READ_BYTES" default:"10485760"`
	MaxTreeDepth     int   `envconfig:"MAX_TREE_DEPTH" default:"32"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8700",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Limits: LimitsConfig{
			MaxSearchResults: 1000,
			MaxReadBytes:     10 << 20,
			MaxTreeDepth:     32,
		},
	}
}
