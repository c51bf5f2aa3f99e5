// Package runner provides the external command boundary for ocrpipe.
// Every page-count, rasterization, and recognition tool invocation goes
// through a Runner so that the pipeline components can be tested without the
// real binaries installed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"ocrpipe/internal/logger"
)

// Result captures the observable outcome of one external tool invocation.
type Result struct {
	// Stdout is the captured standard output of the tool.
	Stdout string
	// Stderr is the captured standard error of the tool.
	Stderr string
	// ExitCode is the tool's exit status; zero means success.
	ExitCode int
}

// Runner executes external tools. Implementations must treat every call as a
// fallible I/O boundary: a missing binary, a non-zero exit, and malformed
// output are all expected failure modes, not programming errors.
type Runner interface {
	// Run executes name with args and blocks until the process exits or ctx
	// is cancelled. A non-zero exit is reported through Result.ExitCode with
	// a nil error; the error return is reserved for failures to run the tool
	// at all (binary missing, ctx cancelled, fork failure).
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// LookPath reports whether name resolves to an executable binary.
	LookPath(name string) bool
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner instance.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the tool with exec.CommandContext, capturing stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logger.ToolInvocation(name, args)

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The tool ran and exited non-zero; that is a tool-level failure
			// the caller inspects through ExitCode.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// LookPath reports whether the binary exists on PATH.
func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
