package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, read once at startup. DBPath and
// JWTSecret have no defaults: starting without them is a hard error.
type Config struct {
	DBPath    string `env:"TASKHIVE_DB_PATH,required"`
	JWTSecret string `env:"JWT_SECRET,required"`
	Port      string `env:"PORT" envDefault:"8080"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
