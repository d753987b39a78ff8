package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvFrom_Defaults(t *testing.T) {
	e, err := ParseEnvFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Env{LogLevel: "info", LogFormat: "text"}, e)
}

func TestParseEnvFrom_Values(t *testing.T) {
	e, err := ParseEnvFrom(map[string]string{
		"LAUNCHGRID_LOG_LEVEL":        "debug",
		"LAUNCHGRID_LOG_FORMAT":       "json",
		"LAUNCHGRID_LOG_DIR":          "/var/log/launchgrid",
		"LAUNCHGRID_HEALTHCHECK_PORT": "8081",
		"AMENT_PREFIX_PATH":           "/opt/ros/jazzy:/ws/install",
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, "json", e.LogFormat)
	assert.Equal(t, "/var/log/launchgrid", e.LogDir)
	assert.Equal(t, 8081, e.HealthcheckPort)
	assert.Equal(t, "/opt/ros/jazzy:/ws/install", e.PrefixPath)
}

func TestParseEnvFrom_InvalidPort(t *testing.T) {
	_, err := ParseEnvFrom(map[string]string{"LAUNCHGRID_HEALTHCHECK_PORT": "eighty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
