// Package config reads CLI defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/deltastate/internal/stream"
)

// Config holds defaults for the global CLI flags. Flags override it.
type Config struct {
	Format      string `env:"DELTASTATE_FORMAT"      envDefault:"text"`
	Verbose     bool   `env:"DELTASTATE_VERBOSE"`
	SchemaDir   string `env:"DELTASTATE_SCHEMA_DIR"`
	Compression string `env:"DELTASTATE_COMPRESSION" envDefault:"zstd"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads and validates Config from an explicit environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("DELTASTATE_FORMAT: want text or json, got %q", c.Format)
	}
	if _, err := stream.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("DELTASTATE_COMPRESSION: %w", err)
	}
	return nil
}
