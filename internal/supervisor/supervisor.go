package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/paramfile"
	"github.com/specialistvlad/launchgrid/internal/pkgindex"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of a supervised process.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateExited  State = "exited"
	StateFailed  State = "failed"
	StateStopped State = "stopped"
)

// ProcessStatus is a snapshot of one supervised process.
type ProcessStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Executable string    `json:"executable"`
	State      State     `json:"state"`
	PID        int       `json:"pid,omitempty"`
	ExitCode   int       `json:"exit_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	ExitedAt   time.Time `json:"exited_at,omitzero"`
}

// Config configures a Supervisor.
type Config struct {
	// Packages locates executables that name a package.
	Packages *pkgindex.Index
	// LogDir receives <name>.log for processes whose output policy is log or
	// both. Empty means a directory under os.TempDir.
	LogDir string
	// Stdout receives prefixed output of processes with the screen policy.
	Stdout io.Writer
	// StopTimeout is how long a process gets between SIGTERM and SIGKILL.
	StopTimeout time.Duration
	// LookPath finds executables without a package; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// Supervisor runs launch plans. A Supervisor runs one plan at a time; its
// status is safe to read concurrently.
type Supervisor struct {
	cfg      Config
	screenMu sync.Mutex

	mu       sync.RWMutex
	order    []string
	statuses map[string]*ProcessStatus
}

// New creates a Supervisor, filling in defaults for unset fields.
func New(cfg Config) *Supervisor {
	if cfg.Packages == nil {
		cfg.Packages = pkgindex.New()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(os.TempDir(), "launchgrid", "log")
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	if cfg.LookPath == nil {
		cfg.LookPath = exec.LookPath
	}
	return &Supervisor{cfg: cfg, statuses: make(map[string]*ProcessStatus)}
}

// Statuses returns a snapshot of every process of the current plan, in plan
// order.
func (s *Supervisor) Statuses() []ProcessStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProcessStatus, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.statuses[id])
	}
	return out
}

func (s *Supervisor) update(id string, fn func(*ProcessStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.statuses[id])
}

func (s *Supervisor) reset(plan *launch.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.statuses = make(map[string]*ProcessStatus, len(plan.Requests))
	for _, req := range plan.Requests {
		s.order = append(s.order, req.ID)
		s.statuses[req.ID] = &ProcessStatus{
			ID:         req.ID,
			Name:       req.FullName(),
			Executable: req.Executable.String(),
			State:      StatePending,
		}
	}
}

// Run starts every request of plan and blocks until all of them have
// exited. A process exiting with a non-zero status stops the others and its
// error is returned. Cancelling ctx stops every process; Run then returns
// nil unless a process had already failed.
func (s *Supervisor) Run(ctx context.Context, plan *launch.Plan) error {
	ctx, logger := ctxlog.With(ctx, "plan_id", plan.ID)
	s.reset(plan)

	paramsDir, err := os.MkdirTemp("", "launchgrid-params-")
	if err != nil {
		return fmt.Errorf("creating parameters directory: %w", err)
	}
	defer os.RemoveAll(paramsDir)

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range plan.Requests {
		cmd, done, err := s.start(gctx, req, paramsDir)
		if err != nil {
			s.update(req.ID, func(st *ProcessStatus) {
				st.State = StateFailed
				st.Error = err.Error()
			})
			// Stop whatever already started before reporting.
			g.Go(func() error { return err })
			break
		}
		g.Go(func() error { return s.wait(gctx, req, cmd, done) })
	}

	err = g.Wait()
	s.markSkipped()
	if err != nil {
		logger.Error("Launch stopped after a process failed.", "error", err)
		return err
	}
	logger.Info("🏁 All processes exited.")
	return nil
}

// start prepares and starts one process. done releases its output writers.
func (s *Supervisor) start(ctx context.Context, req launch.LaunchRequest, paramsDir string) (*exec.Cmd, func() error, error) {
	logger := ctxlog.FromContext(ctx).With("process", req.FullName())

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("process %s not started: %w", req.FullName(), err)
	}

	path, err := s.resolveExecutable(req.Executable)
	if err != nil {
		return nil, nil, fmt.Errorf("process %s: %w", req.FullName(), err)
	}

	paramsFile, err := writeParams(paramsDir, req)
	if err != nil {
		return nil, nil, fmt.Errorf("process %s: %w", req.FullName(), err)
	}

	out, done, err := s.outputs(req)
	if err != nil {
		return nil, nil, fmt.Errorf("process %s: %w", req.FullName(), err)
	}

	cmd := exec.CommandContext(ctx, path, Argv(req, paramsFile)...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = s.cfg.StopTimeout

	if err := cmd.Start(); err != nil {
		done()
		return nil, nil, fmt.Errorf("starting process %s: %w", req.FullName(), err)
	}
	s.update(req.ID, func(st *ProcessStatus) {
		st.State = StateRunning
		st.PID = cmd.Process.Pid
		st.StartedAt = time.Now()
	})
	logger.Info("🚀 Process started.", "pid", cmd.Process.Pid, "executable", path)
	return cmd, done, nil
}

func (s *Supervisor) wait(ctx context.Context, req launch.LaunchRequest, cmd *exec.Cmd, done func() error) error {
	logger := ctxlog.FromContext(ctx).With("process", req.FullName())

	waitErr := cmd.Wait()
	if err := done(); err != nil {
		logger.Warn("Closing process output failed.", "error", err)
	}
	code := cmd.ProcessState.ExitCode()

	switch {
	case ctx.Err() != nil:
		s.update(req.ID, func(st *ProcessStatus) {
			st.State = StateStopped
			st.ExitedAt = time.Now()
		})
		logger.Info("Process stopped.")
		return nil
	case waitErr != nil:
		s.update(req.ID, func(st *ProcessStatus) {
			st.State = StateFailed
			st.ExitCode = code
			st.Error = waitErr.Error()
			st.ExitedAt = time.Now()
		})
		logger.Error("Process failed.", "exit_code", code, "error", waitErr)
		return fmt.Errorf("process %s: %w", req.FullName(), waitErr)
	default:
		s.update(req.ID, func(st *ProcessStatus) {
			st.State = StateExited
			st.ExitedAt = time.Now()
		})
		logger.Info("Process exited.")
		return nil
	}
}

// markSkipped marks processes that never started as stopped.
func (s *Supervisor) markSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if st.State == StatePending {
			st.State = StateStopped
		}
	}
}

// resolveExecutable finds the program for exe: in its package when one is
// named, otherwise on PATH.
func (s *Supervisor) resolveExecutable(exe launch.Executable) (string, error) {
	if exe.Package != "" {
		return s.cfg.Packages.Executable(exe.Package, exe.Name)
	}
	path, err := s.cfg.LookPath(exe.Name)
	if err != nil {
		return "", fmt.Errorf("executable %q: %w", exe.Name, err)
	}
	return path, nil
}

func writeParams(dir string, req launch.LaunchRequest) (string, error) {
	if len(req.Parameters) == 0 {
		return "", nil
	}
	data, err := paramfile.Encode(req.Name, req.Parameters)
	if err != nil {
		return "", fmt.Errorf("encoding parameters: %w", err)
	}
	path := filepath.Join(dir, req.ID+".yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing parameters: %w", err)
	}
	return path, nil
}
