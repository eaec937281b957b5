package runner

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/caserun/caserun/engine"
)

// ProgramOptions carries the registry-supplied settings shared by the
// concrete program kinds: the per-case timeout and extra metadata
// properties applied to every case of the program.
type ProgramOptions struct {
	Timeout    time.Duration
	Properties map[string]string
}

// PlainProgram is the simplest test-program interface: the binary is the
// test. It exposes a single test case named "main" whose verdict is the
// program's exit status.
type PlainProgram struct {
	engine.ProgramBase
	executor *Executor
	opts     ProgramOptions
}

// NewPlainProgram builds a plain-interface test program.
func NewPlainProgram(binary, root, suiteName string, executor *Executor, opts ProgramOptions) *PlainProgram {
	return &PlainProgram{
		ProgramBase: engine.NewProgramBase(binary, root, suiteName),
		executor:    executor,
		opts:        opts,
	}
}

// LoadTestCases returns the program's single "main" test case. Plain
// programs need no introspection, so discovery cannot fail.
func (p *PlainProgram) LoadTestCases() ([]*engine.TestCase, error) {
	return []*engine.TestCase{
		engine.NewTestCase(p, "main", &plainBehavior{program: p}),
	}, nil
}

type plainBehavior struct {
	program *PlainProgram
}

func (b *plainBehavior) Properties() map[string]string {
	return caseProperties(b.program.opts)
}

func (b *plainBehavior) Execute(cfg *engine.Config, hooks engine.Hooks, stdoutPath, stderrPath string) (engine.Result, error) {
	if cfg == nil {
		return engine.Result{}, errors.New("nil config")
	}

	properties := b.Properties()
	if reason := checkRequirements(properties, cfg); reason != "" {
		return engine.NewResult(engine.ResultSkipped, reason), nil
	}

	program := b.program
	outcome, cleanup, err := program.executor.Capture(context.Background(), Request{
		Binary:     program.Binary(),
		ExtraEnv:   cfg.SuiteVars(program.TestSuiteName()),
		Timeout:    caseTimeout(properties, program.opts.Timeout),
		Hooks:      hooks,
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
		Label:      program.Binary() + ":main",
	})
	if err != nil {
		return engine.Result{}, err
	}
	defer cleanup()

	return classifyExit(outcome, properties), nil
}

// caseProperties materializes the metadata mapping for a case: the
// registry-supplied properties plus the effective timeout.
func caseProperties(opts ProgramOptions) map[string]string {
	properties := maps.Clone(opts.Properties)
	if properties == nil {
		properties = make(map[string]string)
	}
	if _, ok := properties[PropTimeout]; !ok {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		properties[PropTimeout] = timeout.String()
	}
	return properties
}

// caseTimeout resolves the effective timeout from metadata, falling back to
// the program default.
func caseTimeout(properties map[string]string, fallback time.Duration) time.Duration {
	if raw, ok := properties[PropTimeout]; ok {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTimeout
}
