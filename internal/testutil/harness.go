// Package testutil provides a harness for integration tests that load a
// descriptor from in-memory files and build its plan through the App.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/launchgrid/internal/app"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Root is the temporary directory the files were written to.
	Root      string
	LogOutput string
	Err       error
	App       *app.App
	Plan      *launch.Plan
}

// Options tweak a harness run.
type Options struct {
	Overrides map[string]string
	Partial   bool
	// PrefixPath is relative to the temporary root. Empty means the root.
	PrefixPath string
}

// RunIntegrationTest writes files under a temporary root, loads the
// descriptor in its "launch" directory and builds the plan.
func RunIntegrationTest(t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts)
}

// RunIntegrationTestWithContext is RunIntegrationTest with a caller-provided context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()
	launchDir := filepath.Join(tmpDir, "launch")
	require.NoError(t, os.Mkdir(launchDir, 0o755))

	// 2. Write all files. Paths are relative to the root, and every
	//    occurrence of {{root}} in a file is replaced with the root itself.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		content = expandRoot(content, tmpDir)
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	overrides := make(map[string]string, len(opts.Overrides))
	for k, v := range opts.Overrides {
		overrides[k] = expandRoot(v, tmpDir)
	}

	// 3. Configure the app against the temporary root.
	cfg, err := app.NewConfig(app.Config{
		DescriptorPath: launchDir,
		Overrides:      overrides,
		Partial:        opts.Partial,
		LogLevel:       "debug",
		LogFormat:      "text",
		PrefixPath:     filepath.Join(tmpDir, opts.PrefixPath),
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{Root: tmpDir}

	result.App, result.Err = app.NewApp(&bytes.Buffer{}, logBuffer, cfg, app.HCLLoader)
	if result.Err == nil {
		result.Plan, result.Err = result.App.Plan(ctx)
	}

	if os.Getenv("LAUNCHGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	result.LogOutput = logBuffer.String()
	return result
}

func expandRoot(s, root string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte("{{root}}"), []byte(root)))
}
