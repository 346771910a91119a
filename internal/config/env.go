package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from LEVELSCORE_* environment variables.
// Unset variables leave the matching field nil.
type EnvConfig struct {
	Addr     *string `env:"LEVELSCORE_ADDR"`
	Levels   *string `env:"LEVELSCORE_LEVELS"`
	Snapshot *string `env:"LEVELSCORE_SNAPSHOT"`
	LogDir   *string `env:"LEVELSCORE_LOG_DIR"`
	RawLog   *bool   `env:"LEVELSCORE_RAW_LOG"`
	Persist  *string `env:"LEVELSCORE_PERSIST"`
	Resume   *bool   `env:"LEVELSCORE_RESUME"`
}

// LoadEnv reads overrides from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom reads overrides from the given variables instead of the process environment.
func LoadEnvFrom(vars map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
