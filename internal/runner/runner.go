// Package runner executes external programs synchronously and captures their
// output as text. The Runner interface is the seam used to replace the real
// scanner in tests.
package runner

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/anstrom/easymap/internal/runner Runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
)

// NotStarted is the exit code reported when the process never ran.
const NotStarted = -1

// Result holds everything captured from one process run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Started reports whether the process was actually launched.
func (r Result) Started() bool {
	return r.ExitCode != NotStarted
}

// Runner runs a program to completion.
// The returned error is non-nil when the program could not be started or
// exited with a non-zero status; Result is populated in both cases.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	log *logging.Logger
}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner(log *logging.Logger) *ExecRunner {
	if log == nil {
		log = logging.Default()
	}
	return &ExecRunner{log: log.WithComponent("runner")}
}

// Run executes name with args and blocks until it exits.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	r.log.Debug("Executing command", "command", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: arguments come from the option catalogue and the interactive user

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: NotStarted,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		code := errors.CodeScanFailed
		if ctx.Err() != nil {
			code = errors.CodeCanceled
		}
		r.log.Debug("Command failed", "command", name, "exit_code", res.ExitCode, "error", err)
		return res, errors.WrapScanError(code, "command "+name+" failed", err).
			WithContext("exit_code", res.ExitCode)
	}

	r.log.Debug("Command finished", "command", name, "duration", res.Duration)
	return res, nil
}
