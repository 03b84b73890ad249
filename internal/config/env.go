package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// parseEnv populates cfg from the process environment.
func parseEnv(cfg *StructuredConfig) error {
	return parseEnvFrom(cfg, env.ToMap(os.Environ()))
}

// parseEnvFrom populates cfg from environ. Variable names follow the `env`
// and `envPrefix` tags of [StructuredConfig], so the DSN is read from
// STORAGE_DB_DATABASE_URI and the cleanup interval from
// WORKERS_REFRESH_TOKEN_CLEANUP_INTERVAL.
func parseEnvFrom(cfg *StructuredConfig, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
