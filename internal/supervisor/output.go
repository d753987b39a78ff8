package supervisor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specialistvlad/launchgrid/internal/launch"
)

// prefixWriter copies complete lines to a shared writer, each prefixed with
// the process name. Lines of different processes never interleave.
type prefixWriter struct {
	mu     *sync.Mutex
	out    io.Writer
	prefix string
	buf    bytes.Buffer
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line: keep it for the next write.
			w.buf.Reset()
			w.buf.Write(line)
			return len(p), nil
		}
		if err := w.emit(line); err != nil {
			return 0, err
		}
	}
}

// Close flushes a trailing line that had no newline.
func (w *prefixWriter) Close() error {
	if w.buf.Len() == 0 {
		return nil
	}
	line := append(w.buf.Bytes(), '\n')
	w.buf.Reset()
	return w.emit(line)
}

func (w *prefixWriter) emit(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.out, "[%s] %s", w.prefix, line)
	return err
}

// outputs opens the writers for one process according to its policy. The
// returned closer must be called once the process has exited.
func (s *Supervisor) outputs(req launch.LaunchRequest) (io.Writer, func() error, error) {
	var (
		writers []io.Writer
		closers []io.Closer
	)
	if req.Output == launch.OutputScreen || req.Output == launch.OutputBoth {
		pw := &prefixWriter{mu: &s.screenMu, out: s.cfg.Stdout, prefix: req.Name}
		writers = append(writers, pw)
		closers = append(closers, pw)
	}
	if req.Output == launch.OutputLog || req.Output == launch.OutputBoth {
		if err := os.MkdirAll(s.cfg.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(LogFile(s.cfg.LogDir, req), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}
	closeAll := func() error {
		var first error
		for _, c := range closers {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return io.MultiWriter(writers...), closeAll, nil
}

// LogFile is the path of the log file written for req under dir.
func LogFile(dir string, req launch.LaunchRequest) string {
	name := strings.ReplaceAll(strings.Trim(req.FullName(), "/"), "/", "_")
	return filepath.Join(dir, name+".log")
}
