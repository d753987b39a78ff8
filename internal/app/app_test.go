package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "minimal", cfg: Config{DescriptorPath: "launch.hcl"}},
		{name: "missing path", cfg: Config{}, wantErr: "DescriptorPath"},
		{name: "bad format", cfg: Config{DescriptorPath: "x", LogFormat: "xml"}, wantErr: "log format"},
		{name: "bad level", cfg: Config{DescriptorPath: "x", LogLevel: "trace"}, wantErr: "log level"},
		{name: "bad port", cfg: Config{DescriptorPath: "x", HealthcheckPort: 70000}, wantErr: "port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg.Overrides)
		})
	}
}

func TestNewConfig_CopiesOverrides(t *testing.T) {
	overrides := map[string]string{"map": "/a.yaml"}
	cfg, err := NewConfig(Config{DescriptorPath: "x", Overrides: overrides})
	require.NoError(t, err)
	overrides["map"] = "/b.yaml"
	assert.Equal(t, "/a.yaml", cfg.Overrides["map"])
}

func examplePrefix(t *testing.T) string {
	t.Helper()
	prefix, err := filepath.Abs(filepath.Join("..", "..", "examples", "install"))
	require.NoError(t, err)
	return prefix
}

func TestApp_PlanExample(t *testing.T) {
	prefix := examplePrefix(t)
	a, _, logs, err := SetupAppTest(t, &Config{
		DescriptorPath: filepath.Join(prefix, "share", "robotics_class", "launch"),
		PrefixPath:     prefix,
		Overrides:      map[string]string{"use_lifecycle_manager": "false"},
	})
	require.NoError(t, err)

	plan, err := a.Plan(context.Background())
	require.NoError(t, err)
	assert.Len(t, plan.Requests, 3)
	assert.Contains(t, logs.String(), "Launch plan built.")
}

func TestApp_PartialPlan(t *testing.T) {
	prefix := examplePrefix(t)
	cfg := &Config{
		DescriptorPath: filepath.Join(prefix, "share", "robotics_class", "launch"),
		PrefixPath:     prefix,
		Overrides:      map[string]string{"params_file": "/nonexistent.yaml"},
	}

	a, _, _, err := SetupAppTest(t, cfg)
	require.NoError(t, err)
	_, err = a.Plan(context.Background())
	require.ErrorIs(t, err, launch.ErrParameterSource)

	cfg.Partial = true
	a, _, _, err = SetupAppTest(t, cfg)
	require.NoError(t, err)
	plan, err := a.Plan(context.Background())
	require.NoError(t, err)

	var failed []string
	for _, f := range plan.Failures {
		failed = append(failed, f.Name)
	}
	assert.Equal(t, []string{"map_server", "amcl"}, failed)
	assert.Len(t, plan.Requests, 2)
}

func TestApp_LoadError(t *testing.T) {
	_, _, _, err := SetupAppTest(t, &Config{DescriptorPath: filepath.Join(t.TempDir(), "missing.hcl")})
	require.ErrorContains(t, err, "failed to load launch descriptor")
}

func TestApp_RunSupervisesProcesses(t *testing.T) {
	prefix := t.TempDir()
	bin := filepath.Join(prefix, "lib", "demo")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "hello"), []byte("#!/bin/sh\necho hello from $3\n"), 0o755))

	descriptor := filepath.Join(t.TempDir(), "launch.hcl")
	require.NoError(t, os.WriteFile(descriptor, []byte(`
argument "who" { default = "greeter" }
process "hello" {
  package    = "demo"
  executable = "hello"
  name       = arg.who
  output     = "screen"
}
`), 0o644))

	a, out, _, err := SetupAppTest(t, &Config{DescriptorPath: descriptor, PrefixPath: prefix, LogDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, "[greeter] hello from __node:=greeter\n", out.String())
	statuses := a.Supervisor().Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, supervisor.StateExited, statuses[0].State)
}

func TestApp_HealthEndpoints(t *testing.T) {
	descriptor := filepath.Join(t.TempDir(), "launch.hcl")
	require.NoError(t, os.WriteFile(descriptor, []byte(`process "idle" { executable = "true" }`), 0o644))

	a, _, _, err := SetupAppTest(t, &Config{DescriptorPath: descriptor})
	require.NoError(t, err)
	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/processes")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var statuses []supervisor.ProcessStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Empty(t, statuses)
}
