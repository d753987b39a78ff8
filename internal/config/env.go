package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings read from the environment. Command-line flags take
// precedence over every field.
type Env struct {
	LogLevel        string `env:"LAUNCHGRID_LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LAUNCHGRID_LOG_FORMAT" envDefault:"text"`
	LogDir          string `env:"LAUNCHGRID_LOG_DIR"`
	HealthcheckPort int    `env:"LAUNCHGRID_HEALTHCHECK_PORT" envDefault:"0"`
	// PrefixPath lists install prefixes searched for packages.
	PrefixPath string `env:"AMENT_PREFIX_PATH"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ParseEnvFrom loads Env from the given variables instead of the process
// environment.
func ParseEnvFrom(vars map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
