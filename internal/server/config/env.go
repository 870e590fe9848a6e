package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays values from environment variables. Unset variables keep
// the value already present in config; malformed values panic like the other
// layers do.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
