package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caserun/caserun/engine"
)

// Go test binary flags. Compiled test binaries accept the -test.* form of
// the usual `go test` flags.
const (
	listFlag       = "-test.list"
	runFlag        = "-test.run"
	verboseFlag    = "-test.v"
	binTimeoutFlag = "-test.timeout"
)

// GoTestProgram runs compiled Go test binaries. Discovery asks the binary
// to list its test functions; execution runs one function at a time and
// reads its verdict from the verbose output.
type GoTestProgram struct {
	engine.ProgramBase
	executor *Executor
	opts     ProgramOptions
}

// NewGoTestProgram builds a Go-test-interface test program.
func NewGoTestProgram(binary, root, suiteName string, executor *Executor, opts ProgramOptions) *GoTestProgram {
	return &GoTestProgram{
		ProgramBase: engine.NewProgramBase(binary, root, suiteName),
		executor:    executor,
		opts:        opts,
	}
}

// LoadTestCases invokes the binary with -test.list and builds one test case
// per listed function. A binary that cannot be executed or exits uncleanly
// is a discovery fault, not a test outcome.
func (p *GoTestProgram) LoadTestCases() ([]*engine.TestCase, error) {
	outcome, cleanup, err := p.executor.Capture(context.Background(), Request{
		Binary:  p.Binary(),
		Args:    []string{listFlag, ".*"},
		Timeout: time.Minute,
		Label:   p.Binary() + ":list",
	})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if outcome.StartErr != nil {
		return nil, fmt.Errorf("failed to invoke test program %s for discovery: %w", p.Binary(), outcome.StartErr)
	}
	if outcome.TimedOut || outcome.Signaled || outcome.ExitStatus != 0 {
		return nil, fmt.Errorf("test program %s did not list its test cases cleanly (exit status %d)", p.Binary(), outcome.ExitStatus)
	}

	listOut, err := os.Open(outcome.StdoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read discovery output: %w", err)
	}
	defer func() { _ = listOut.Close() }()

	names, err := parseTestList(listOut)
	if err != nil {
		return nil, err
	}

	cases := make([]*engine.TestCase, 0, len(names))
	for _, name := range names {
		cases = append(cases, engine.NewTestCase(p, name, &goTestBehavior{program: p, name: name}))
	}
	return cases, nil
}

type goTestBehavior struct {
	program *GoTestProgram
	name    string
}

func (b *goTestBehavior) Properties() map[string]string {
	return caseProperties(b.program.opts)
}

func (b *goTestBehavior) Execute(cfg *engine.Config, hooks engine.Hooks, stdoutPath, stderrPath string) (engine.Result, error) {
	if cfg == nil {
		return engine.Result{}, errors.New("nil config")
	}

	properties := b.Properties()
	if reason := checkRequirements(properties, cfg); reason != "" {
		return engine.NewResult(engine.ResultSkipped, reason), nil
	}

	program := b.program
	timeout := caseTimeout(properties, program.opts.Timeout)
	outcome, cleanup, err := program.executor.Capture(context.Background(), Request{
		Binary: program.Binary(),
		Args: []string{
			runFlag, "^" + b.name + "$",
			verboseFlag,
			// Let the binary's own deadline fire slightly later than ours
			// so a hung test is attributed to the timeout, not the binary.
			binTimeoutFlag, (timeout + time.Second).String(),
		},
		ExtraEnv:   cfg.SuiteVars(program.TestSuiteName()),
		Timeout:    timeout,
		Hooks:      hooks,
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
		Label:      program.Binary() + ":" + b.name,
	})
	if err != nil {
		return engine.Result{}, err
	}
	defer cleanup()

	return b.classify(outcome, properties), nil
}

// classify reads the captured output for the test's own verdict. Process
// level anomalies win over anything the output claims: a crashed or timed
// out binary cannot be trusted to have reported its state.
func (b *goTestBehavior) classify(outcome *ProcessOutcome, properties map[string]string) engine.Result {
	if outcome.StartErr != nil || outcome.TimedOut || outcome.Signaled {
		return classifyExit(outcome, properties)
	}

	stdout, err := os.Open(outcome.StdoutPath)
	if err != nil {
		return engine.NewResult(engine.ResultBroken,
			fmt.Sprintf("Failed to read captured output: %v", err))
	}
	defer func() { _ = stdout.Close() }()

	verdict, reason := parseVerdict(stdout, b.name)
	switch verdict {
	case VerdictPass:
		if outcome.ExitStatus != 0 {
			return engine.NewResult(engine.ResultBroken,
				fmt.Sprintf("Test reported a pass but the program returned exit status %d", outcome.ExitStatus))
		}
		return engine.Passed()
	case VerdictSkip:
		if reason == "" {
			reason = "Test reported a skip without a reason"
		}
		return engine.NewResult(engine.ResultSkipped, reason)
	case VerdictFail:
		if reason == "" {
			reason = "Test reported a failure"
		}
		return maybeExpectedFailure(engine.NewResult(engine.ResultFailed, reason), properties)
	default:
		return engine.NewResult(engine.ResultBroken,
			fmt.Sprintf("Test program did not report a verdict for %s (exit status %d)", b.name, outcome.ExitStatus))
	}
}
