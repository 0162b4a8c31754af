// Package config handles environment variable configuration loading.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultBackendURL is the incident service base URL baked in at build time.
// Override with -ldflags "-X github.com/cragr/incident-search/internal/config.DefaultBackendURL=...".
var DefaultBackendURL = "http://localhost:8080"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Incident service connection settings
	BackendURL  string        `env:"BACKEND_URL"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`

	// HTTP server settings
	HTTPPort string `env:"HTTP_PORT" envDefault:"8081"`

	// Language used when no preference has been stored
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from an optional .env file and environment
// variables and returns a Config. Returns an error if a field is invalid.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return errors.New("BACKEND_URL is required")
	}
	parsed, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https, got %q", c.BackendURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("BACKEND_URL must include a host, got %q", c.BackendURL)
	}
	if c.HTTPTimeout < 0 {
		return errors.New("HTTP_TIMEOUT must not be negative")
	}
	switch c.DefaultLanguage {
	case "en", "fr":
	default:
		return fmt.Errorf("DEFAULT_LANGUAGE must be en or fr, got %q", c.DefaultLanguage)
	}
	return nil
}

// loadDotEnv loads variables from path when the file exists. Variables
// already present in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
