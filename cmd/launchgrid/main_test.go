package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/launchgrid/internal/cli"
	"github.com/stretchr/testify/require"
)

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
	return exitErr.Code
}

func TestRun_DescriptorSyntaxError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		process "a" {
			executable = "a"
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, errOut, []string{"plan", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	require.Equal(t, cli.ExitUsage, exitCode(t, runErr))
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--help"})

	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"plan", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Equal(t, cli.ExitUsage, exitCode(t, err))
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_PlanExample(t *testing.T) {
	t.Parallel()

	prefix, err := filepath.Abs(filepath.Join("..", "..", "examples", "install"))
	require.NoError(t, err)
	descriptor := filepath.Join(prefix, "share", "robotics_class", "launch", "localization.hcl")

	out := &bytes.Buffer{}
	err = run(context.Background(), out, &bytes.Buffer{}, []string{
		"plan", "--prefix-path", prefix, "-o", "json", descriptor, "use_sim_time:=false",
	})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"name": "map_to_odom_broadcaster"`)
	require.Contains(t, out.String(), `"use_sim_time": "false"`)
}

func TestRun_BuildFailure(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(`argument "map" {}`), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"plan", filePath})

	require.Error(t, err)
	require.Equal(t, cli.ExitFailure, exitCode(t, err))
	require.Contains(t, err.Error(), "missing required argument")
}
