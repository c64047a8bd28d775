// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY,required"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-flash-lite-latest"`
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"tubestream.db"`
	DownloadsPath string `env:"DOWNLOADS_PATH" envDefault:"downloads"`

	// BackendURL is the default download engine; it can be overridden
	// at runtime from the settings view.
	BackendURL string `env:"BACKEND_URL"`

	// Optional metadata cache
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.DownloadsPath == "" {
		return fmt.Errorf("DOWNLOADS_PATH cannot be empty")
	}

	if c.BackendURL != "" {
		c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("BACKEND_URL must be an absolute URL, got: %s", c.BackendURL)
		}
	}

	return nil
}
