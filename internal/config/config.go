package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           string `env:"PORT" envDefault:"8009"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
