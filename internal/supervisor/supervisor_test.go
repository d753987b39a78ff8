package supervisor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/pkgindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// installScript writes an executable shell script as <prefix>/lib/<pkg>/<name>.
func installScript(t *testing.T, prefix, pkg, name, body string) {
	t.Helper()
	dir := filepath.Join(prefix, "lib", pkg)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func newTestSupervisor(t *testing.T, prefix string) (*Supervisor, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	return New(Config{
		Packages:    pkgindex.New(prefix),
		LogDir:      filepath.Join(t.TempDir(), "log"),
		Stdout:      out,
		StopTimeout: time.Second,
	}), out
}

func request(id, pkg string, output launch.OutputPolicy) launch.LaunchRequest {
	return launch.LaunchRequest{
		ID:         id,
		Executable: launch.Executable{Package: pkg, Name: id},
		Name:       id,
		Output:     output,
		Parameters: launch.Parameters{},
	}
}

func TestArgv(t *testing.T) {
	req := launch.LaunchRequest{
		Name:       "amcl",
		Namespace:  "robot1",
		Args:       []string{"--verbose"},
		Remappings: []launch.ResolvedRemapping{{From: "/scan", To: "/robot1/scan"}},
	}
	got := Argv(req, "/tmp/amcl.yaml")
	want := []string{
		"--verbose",
		"--ros-args",
		"-r", "__node:=amcl",
		"-r", "__ns:=/robot1",
		"-r", "/scan:=/robot1/scan",
		"--params-file", "/tmp/amcl.yaml",
	}
	assert.Equal(t, want, got)

	bare := Argv(launch.LaunchRequest{Name: "tf"}, "")
	assert.Equal(t, []string{"--ros-args", "-r", "__node:=tf"}, bare)
}

func TestPrefixWriter(t *testing.T) {
	var mu sync.Mutex
	var out bytes.Buffer
	w := &prefixWriter{mu: &mu, out: &out, prefix: "amcl"}

	_, err := w.Write([]byte("first line\nsecond "))
	require.NoError(t, err)
	_, err = w.Write([]byte("line\nunterminated"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "[amcl] first line\n[amcl] second line\n[amcl] unterminated\n", out.String())
}

func TestLogFile(t *testing.T) {
	req := launch.LaunchRequest{Name: "amcl", Namespace: "/robot1"}
	assert.Equal(t, filepath.Join("/logs", "robot1_amcl.log"), LogFile("/logs", req))
}

func TestRun_ScreenAndLogOutput(t *testing.T) {
	prefix := t.TempDir()
	installScript(t, prefix, "demo", "talker", `echo "args: $*"
for a in "$@"; do
  if [ "$prev" = "--params-file" ]; then cat "$a"; fi
  prev="$a"
done`)

	s, out := newTestSupervisor(t, prefix)
	req := request("talker", "demo", launch.OutputBoth)
	req.Parameters = launch.Parameters{"rate": 10, "frame.id": "odom"}
	plan := &launch.Plan{ID: "plan-1", Requests: []launch.LaunchRequest{req}}

	require.NoError(t, s.Run(context.Background(), plan))

	screen := out.String()
	assert.Contains(t, screen, "[talker] args: --ros-args -r __node:=talker --params-file ")
	assert.Contains(t, screen, "[talker]   ros__parameters:")
	assert.Contains(t, screen, "[talker]       id: odom")

	logData, err := os.ReadFile(LogFile(s.cfg.LogDir, req))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "rate: 10")
	assert.NotContains(t, string(logData), "[talker]")

	statuses := s.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, StateExited, statuses[0].State)
	assert.NotZero(t, statuses[0].PID)
}

func TestRun_FailureStopsOthers(t *testing.T) {
	prefix := t.TempDir()
	installScript(t, prefix, "demo", "sleeper", "exec sleep 30")
	installScript(t, prefix, "demo", "crasher", "sleep 0.2; echo boom >&2; exit 3")

	s, _ := newTestSupervisor(t, prefix)
	plan := &launch.Plan{Requests: []launch.LaunchRequest{
		request("sleeper", "demo", launch.OutputLog),
		request("crasher", "demo", launch.OutputLog),
	}}

	start := time.Now()
	err := s.Run(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Less(t, time.Since(start), 10*time.Second)

	statuses := s.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, StateStopped, statuses[0].State)
	assert.Equal(t, StateFailed, statuses[1].State)
	assert.Equal(t, 3, statuses[1].ExitCode)

	logData, err := os.ReadFile(LogFile(s.cfg.LogDir, plan.Requests[1]))
	require.NoError(t, err)
	assert.Equal(t, "boom\n", string(logData))
}

func TestRun_ContextCancelStopsAll(t *testing.T) {
	prefix := t.TempDir()
	installScript(t, prefix, "demo", "a", "exec sleep 30")
	installScript(t, prefix, "demo", "b", "exec sleep 30")

	s, _ := newTestSupervisor(t, prefix)
	plan := &launch.Plan{Requests: []launch.LaunchRequest{
		request("a", "demo", launch.OutputLog),
		request("b", "demo", launch.OutputLog),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, plan) }()

	require.Eventually(t, func() bool {
		for _, st := range s.Statuses() {
			if st.State != StateRunning {
				return false
			}
		}
		return len(s.Statuses()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
	for _, st := range s.Statuses() {
		assert.Equal(t, StateStopped, st.State, st.Name)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	prefix := t.TempDir()
	installScript(t, prefix, "demo", "ok", "exec sleep 30")

	s, _ := newTestSupervisor(t, prefix)
	plan := &launch.Plan{Requests: []launch.LaunchRequest{
		request("ok", "demo", launch.OutputLog),
		request("ghost", "demo", launch.OutputLog),
		request("never", "demo", launch.OutputLog),
	}}

	err := s.Run(context.Background(), plan)
	require.ErrorIs(t, err, pkgindex.ErrPackageNotFound)

	states := map[string]State{}
	for _, st := range s.Statuses() {
		states[strings.TrimPrefix(st.Name, "/")] = st.State
	}
	assert.Equal(t, map[string]State{"ok": StateStopped, "ghost": StateFailed, "never": StateStopped}, states)
}

func TestRun_PathLookup(t *testing.T) {
	s, out := newTestSupervisor(t, t.TempDir())
	req := launch.LaunchRequest{
		ID:         "echo",
		Executable: launch.Executable{Name: "echo"},
		Name:       "echo",
		Output:     launch.OutputScreen,
		Args:       []string{"hello"},
	}
	require.NoError(t, s.Run(context.Background(), &launch.Plan{Requests: []launch.LaunchRequest{req}}))
	assert.Equal(t, "[echo] hello --ros-args -r __node:=echo\n", out.String())
}
