// Package sandbox executes a persisted script artifact as a subprocess with
// a bounded timeout and captures its exit status and stderr.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result captures one sandboxed execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Runner runs artifacts under a fixed interpreter with a fixed timeout.
type Runner struct {
	Interpreter string
	Timeout     time.Duration
}

// NewRunner creates a runner. Defaults: python3, 10s.
func NewRunner(interpreter string, timeout time.Duration) *Runner {
	if interpreter == "" {
		interpreter = "python3"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Runner{Interpreter: interpreter, Timeout: timeout}
}

// Run executes the artifact at path. A nonzero exit or a timeout is
// reported in the Result, not as an error; the returned error covers only
// failures to start the subprocess at all.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Interpreter, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, err
	}
	return res, nil
}
