package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from VRT_* environment
// variables.
type Config struct {
	Addr          string `env:"VRT_ADDR" envDefault:":8080"`
	SQLitePath    string `env:"VRT_SQLITE_PATH"`
	MigrationsDir string `env:"VRT_MIGRATIONS_DIR"`
	JWTSecret     string `env:"VRT_JWT_SECRET"`
	LogMode       string `env:"VRT_LOG_MODE" envDefault:"dev"`
	SeedDemo      bool   `env:"VRT_SEED_DEMO" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
