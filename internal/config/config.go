// Package config loads service configuration from a YAML file overlaid by
// environment variables. Nested sections use a double underscore in the
// variable name, e.g. DATABASE__FILENAME.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// PathEnv names the variable holding the YAML file path.
	PathEnv     = "FOODREVIEW_CONFIG"
	DefaultPath = "application-local.yaml"

	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Config struct {
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" validate:"required"`
	Environment string `yaml:"environment" env:"MYT_ENVIRONMENT" validate:"required"`
	Version     string `yaml:"version" env:"SERVICE_VERSION"`

	API      APIConfig      `yaml:"api" envPrefix:"API__"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING__"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE__"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS__"`
	Reload   ReloadConfig   `yaml:"reload" envPrefix:"RELOAD__"`
}

type APIConfig struct {
	Addr        string `yaml:"addr" env:"ADDR" validate:"required"`
	Title       string `yaml:"title" env:"TITLE"`
	Description string `yaml:"description" env:"DESCRIPTION"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
}

// DatabaseConfig describes where review rows are loaded from.
type DatabaseConfig struct {
	Kind     string `yaml:"kind" env:"KIND" validate:"oneof=csv postgres"`
	Filename string `yaml:"filename" env:"FILENAME" validate:"required_if=Kind csv"`
	Table    string `yaml:"table" env:"TABLE" validate:"required_if=Kind postgres"`
	DSN      string `yaml:"dsn" env:"DSN" validate:"required_if=Kind postgres"`
	Version  string `yaml:"version" env:"VERSION"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Token   string `yaml:"token" env:"TOKEN"`
}

type ReloadConfig struct {
	RateLimit     int `yaml:"rate_limit" env:"RATE_LIMIT" validate:"gte=0"`
	WindowSeconds int `yaml:"window_seconds" env:"WINDOW_SECONDS" validate:"gte=1"`

	// TrustForwardedFor keys the limiter by X-Forwarded-For. Set it only
	// when a proxy in front of the service overwrites that header.
	TrustForwardedFor bool `yaml:"trust_forwarded_for" env:"TRUST_FORWARDED_FOR"`
}

func Default() Config {
	return Config{
		ServiceName: "food-review-api",
		Environment: "local",
		Version:     "dev",
		API: APIConfig{
			Addr:        ":8000",
			Title:       "Food Review API",
			Description: "Food Review REST API to provide reviews from Amazon products.",
		},
		Logging: LoggingConfig{Level: "info"},
		Database: DatabaseConfig{
			Kind:    SourceCSV,
			Table:   "reviews",
			Version: "1",
		},
		Reload: ReloadConfig{
			RateLimit:     5,
			WindowSeconds: 60,
		},
	}
}

// Load applies defaults, then the YAML file at path (a missing file is not
// an error), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	if err := readFile(path, &cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}
