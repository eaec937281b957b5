package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/caserun/caserun/engine"
	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout bounds executions whose metadata carries no timeout.
	DefaultTimeout = 5 * time.Minute

	stdoutFilename = "stdout.txt"
	stderrFilename = "stderr.txt"
)

// ProcessOutcome is the raw, unclassified outcome of running one external
// process: how it terminated and where its output went. Classification into
// an engine.Result happens separately (see classify.go).
type ProcessOutcome struct {
	ExitStatus int
	Signaled   bool
	Signal     syscall.Signal
	TimedOut   bool
	StartErr   error // non-nil when the process could not be started at all
	Duration   time.Duration
	StdoutPath string
	StderrPath string
}

// Request describes one process execution.
type Request struct {
	Binary   string
	Args     []string
	ExtraEnv map[string]string
	Timeout  time.Duration
	Hooks    engine.Hooks
	// StdoutPath/StderrPath override where the standard streams are
	// captured. When empty the stream goes to a file inside the private
	// scratch directory, which only lives until the returned cleanup
	// function runs.
	StdoutPath string
	StderrPath string
	// Label identifies the execution in logs and trace spans.
	Label string
}

// Executor spawns external test programs. Every execution gets a fresh
// private scratch directory as its working directory and two capture files
// for its standard streams, so concurrent executions never share mutable
// state. The ambient environment comes from an engine.Context captured at
// construction time, never from the hosting process implicitly.
type Executor struct {
	execCtx     engine.Context
	scratchBase string
	logger      log.Logger
	tracer      trace.Tracer
}

// NewExecutor builds an executor that runs programs under the given
// execution context. scratchBase is where per-case scratch directories are
// created; empty means the system temp directory.
func NewExecutor(execCtx engine.Context, scratchBase string, logger log.Logger) *Executor {
	if logger == nil {
		logger = log.New()
	}
	return &Executor{
		execCtx:     execCtx,
		scratchBase: scratchBase,
		logger:      logger,
		tracer:      otel.Tracer("caserun/runner"),
	}
}

// Context returns the execution context the executor was built with.
func (e *Executor) Context() engine.Context {
	return e.execCtx
}

// Capture runs one process to completion and reports how it terminated.
// Both capture paths are passed to the request's hooks before the process
// starts, so a caller can tail them while the process runs. The returned
// cleanup function removes the scratch directory; capture files at
// caller-supplied paths survive it.
//
// The error return is reserved for engine faults (scratch or capture file
// setup); a program that cannot be started is reported via StartErr so the
// caller can classify it as a test outcome.
func (e *Executor) Capture(ctx context.Context, req Request) (*ProcessOutcome, func(), error) {
	if req.Binary == "" {
		return nil, nil, errors.New("binary is required")
	}
	hooks := req.Hooks
	if hooks == nil {
		hooks = engine.NopHooks{}
	}

	scratchDir, err := os.MkdirTemp(e.scratchBase, "caserun-case-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(scratchDir) }

	stdoutPath := req.StdoutPath
	if stdoutPath == "" {
		stdoutPath = filepath.Join(scratchDir, stdoutFilename)
	}
	stderrPath := req.StderrPath
	if stderrPath == "" {
		stderrPath = filepath.Join(scratchDir, stderrFilename)
	}

	stdoutFile, err := os.Create(stdoutPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create stdout capture file: %w", err)
	}
	defer func() { _ = stdoutFile.Close() }()

	stderrFile, err := os.Create(stderrPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create stderr capture file: %w", err)
	}
	defer func() { _ = stderrFile.Close() }()

	// The capture locations are known now; tell the caller before the
	// process produces any output.
	hooks.GotStdout(stdoutPath)
	hooks.GotStderr(stderrPath)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spanCtx, span := e.tracer.Start(runCtx, "runner.Capture", trace.WithAttributes(
		attribute.String("caserun.binary", req.Binary),
		attribute.String("caserun.label", req.Label),
	))
	defer span.End()

	cmd := exec.CommandContext(spanCtx, req.Binary, req.Args...)
	cmd.Dir = scratchDir
	cmd.Env = e.buildEnv(req.ExtraEnv)
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile
	cmd.WaitDelay = 5 * time.Second

	e.logger.Debug("Spawning test program", "binary", req.Binary, "args", req.Args, "timeout", timeout, "scratch", scratchDir)

	startTime := time.Now()
	runErr := cmd.Run()
	duration := time.Since(startTime)

	_ = stdoutFile.Sync()
	_ = stderrFile.Sync()

	outcome := &ProcessOutcome{
		Duration:   duration,
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
		TimedOut:   errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			outcome.ExitStatus = exitErr.ExitCode()
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				outcome.Signaled = true
				outcome.Signal = ws.Signal()
			}
		} else {
			outcome.StartErr = runErr
		}
	}

	span.SetAttributes(
		attribute.Int("caserun.exit_status", outcome.ExitStatus),
		attribute.Bool("caserun.timed_out", outcome.TimedOut),
	)

	e.logger.Debug("Test program finished",
		"binary", req.Binary,
		"exit", outcome.ExitStatus,
		"signaled", outcome.Signaled,
		"timedOut", outcome.TimedOut,
		"duration", duration)

	return outcome, cleanup, nil
}

// buildEnv merges the context environment with per-execution extras. Extras
// win on conflict. The result is sorted for reproducibility.
func (e *Executor) buildEnv(extra map[string]string) []string {
	merged := e.execCtx.Env()
	if merged == nil {
		merged = make(map[string]string)
	}
	for name, value := range extra {
		merged[name] = value
	}

	env := make([]string, 0, len(merged))
	for name, value := range merged {
		env = append(env, name+"="+value)
	}
	sort.Strings(env)
	return env
}
