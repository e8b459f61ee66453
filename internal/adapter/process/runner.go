// Package process runs external simulation engines as subprocesses.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
)

// maxCapture bounds the stdout and stderr kept in memory per run.
const maxCapture = 1 << 20

// Command is one invocation of an external program.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// Result is the captured output of a successful run.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes commands, optionally under a watchdog timeout.
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a runner. A zero timeout waits for the process indefinitely.
func NewRunner(timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{timeout: timeout, logger: logger}
}

// Run starts the command and waits for it. A nonzero exit status, a failure
// to start, or a timeout is returned as *domain.ExternalProcessError.
func (r *Runner) Run(ctx context.Context, c Command) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, max: maxCapture}
	cmd.Stderr = &limitedWriter{w: &stderr, max: maxCapture}

	r.logger.Debug("starting external process", "command", c.Path, "args", c.Args, "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if err == nil {
		r.logger.Debug("external process finished", "command", c.Path, "duration", res.Duration)
		return res, nil
	}

	perr := &domain.ExternalProcessError{
		Command:  c.Path,
		Args:     c.Args,
		ExitCode: -1,
		Stderr:   res.Stderr,
		Err:      err,
	}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		perr.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
	case errors.As(err, &exitErr):
		perr.ExitCode = exitErr.ExitCode()
	}
	r.logger.Error("external process failed",
		"command", c.Path,
		"exit_code", perr.ExitCode,
		"duration", res.Duration,
		"error", err,
	)
	return res, perr
}

// limitedWriter keeps the first max bytes and silently drops the rest so a
// chatty engine cannot exhaust memory.
type limitedWriter struct {
	w   *bytes.Buffer
	max int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if room := l.max - l.w.Len(); room > 0 {
		if len(p) > room {
			l.w.Write(p[:room])
		} else {
			l.w.Write(p)
		}
	}
	return len(p), nil
}
