// Package config holds the server configuration read from the environment
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. Flags may override Port and Debug after
// parsing.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Debug          bool     `env:"DEBUG"`
	FrontendOrigin string   `env:"FRONTEND_ORIGIN"`
	APIKeys        []string `env:"API_KEYS" envSeparator:","`

	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"500ms"`

	MainInitialTime  time.Duration `env:"MAIN_INITIAL_TIME" envDefault:"15m"`
	MainIncrement    time.Duration `env:"MAIN_INCREMENT" envDefault:"2s"`
	SideAttackerTime time.Duration `env:"SIDE_ATTACKER_TIME" envDefault:"5m"`
	SideDefenderTime time.Duration `env:"SIDE_DEFENDER_TIME" envDefault:"1m"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects time settings the session manager cannot run with
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("invalid config: TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.MainInitialTime <= 0 || c.SideAttackerTime <= 0 || c.SideDefenderTime <= 0 {
		return fmt.Errorf("invalid config: clock times must be positive")
	}
	if c.MainIncrement < 0 {
		return fmt.Errorf("invalid config: MAIN_INCREMENT must not be negative, got %s", c.MainIncrement)
	}
	return nil
}
