// Package testutils provides test doubles and helpers for ocrpipe testing.
// FakeRunner stands in for the external tool boundary so that pipeline
// components can be exercised without gs, ddjvu, pdfinfo, or tesseract
// installed.
package testutils

import (
	"context"
	"fmt"
	"sync"

	"ocrpipe/internal/runner"
)

// Call records one invocation observed by the FakeRunner.
type Call struct {
	Name string
	Args []string
}

// Response scripts the outcome of one tool invocation. OnRun, when set, runs
// before the scripted result is returned and can create side-effect files
// (e.g. the raster a fake gs run would have produced).
type Response struct {
	Result runner.Result
	Err    error
	OnRun  func(args []string) error
}

// FakeRunner implements runner.Runner with scripted per-binary responses and
// full call recording.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Response
	missing   map[string]bool
	calls     []Call
}

// NewFakeRunner creates an empty FakeRunner. Unscripted binaries succeed with
// empty output, which keeps simple tests short.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string][]Response),
		missing:   make(map[string]bool),
	}
}

// Script queues a response for the named binary. Responses are consumed in
// FIFO order; the last response is sticky and answers all further calls.
func (f *FakeRunner) Script(name string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[name] = append(f.responses[name], resp)
	return f
}

// ScriptStdout queues a zero-exit response carrying the given stdout.
func (f *FakeRunner) ScriptStdout(name, stdout string) *FakeRunner {
	return f.Script(name, Response{Result: runner.Result{Stdout: stdout}})
}

// ScriptExit queues a response with the given exit code and stderr.
func (f *FakeRunner) ScriptExit(name string, code int, stderr string) *FakeRunner {
	return f.Script(name, Response{Result: runner.Result{ExitCode: code, Stderr: stderr}})
}

// MarkMissing makes LookPath report the binary as absent from PATH.
func (f *FakeRunner) MarkMissing(name string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run returns the next scripted response for name, recording the call.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: args})

	queue := f.responses[name]
	var resp Response
	switch len(queue) {
	case 0:
		resp = Response{}
	case 1:
		resp = queue[0]
	default:
		resp = queue[0]
		f.responses[name] = queue[1:]
	}
	f.mu.Unlock()

	if resp.OnRun != nil {
		if err := resp.OnRun(args); err != nil {
			return runner.Result{}, fmt.Errorf("fake runner side effect: %w", err)
		}
	}

	return resp.Result, resp.Err
}

// LookPath reports true unless the binary was marked missing.
func (f *FakeRunner) LookPath(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[name]
}

// Calls returns a copy of every recorded invocation, in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of a single binary, in order.
func (f *FakeRunner) CallsTo(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []Call
	for _, c := range f.calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}
