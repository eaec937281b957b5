package caserun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/caserun/caserun/engine"
	"github.com/caserun/caserun/exitcodes"
	"github.com/caserun/caserun/logging"
	"github.com/caserun/caserun/metrics"
	"github.com/caserun/caserun/registry"
	"github.com/caserun/caserun/runner"
)

// caserun drives complete test runs: it loads the registry, discovers the
// test cases of every program, executes them under the captured execution
// context and reports the outcomes.
type caserun struct {
	ctx        context.Context
	config     *Config
	version    string
	registry   *registry.Registry
	executor   *runner.Executor
	runtimeCfg *engine.Config
	scheduler  *Scheduler
	reporter   MetricsReporter
	result     *RunResult

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*caserun, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating caserun with config",
		"registry", config.RegistryPath,
		"runtimeConfig", config.RuntimeConfig,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"targetSuite", config.TargetSuite)

	// Snapshot the execution context once. Every test case in every run
	// executes under this same cwd/environment pair.
	execCtx, err := engine.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to capture execution context: %w", err)
	}

	executor := runner.NewExecutor(execCtx, config.WorkDir, config.Log)

	reg, err := registry.NewRegistry(registry.Config{
		Log:            config.Log,
		RegistryFile:   config.RegistryPath,
		DefaultTimeout: config.DefaultTimeout,
		Executor:       executor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	runtimeCfg, err := registry.LoadRuntimeConfig(config.RuntimeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load runtime config: %w", err)
	}
	if config.TargetSuite != "" {
		runtimeCfg.TestSuite = config.TargetSuite
	}
	config.Log.Info("caserun.New: created registry and executor",
		"architecture", runtimeCfg.Architecture,
		"platform", runtimeCfg.Platform)

	c := &caserun{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		executor:         executor,
		runtimeCfg:       runtimeCfg,
		reporter:         NewDefaultMetricsReporter(),
		shutdownCallback: shutdownCallback,
	}

	interval := config.RunInterval
	if config.RunOnce {
		interval = 0
	}
	c.scheduler = NewScheduler(interval, c.runTests, config.Log)
	return c, nil
}

// Start runs the test programs periodically at the configured interval.
func (c *caserun) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			c.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	c.ctx = ctx

	if c.config.RunOnce {
		c.config.Log.Info("Starting caserun in run-once mode")
	} else {
		c.config.Log.Info("Starting caserun in continuous mode", "interval", c.config.RunInterval)
	}

	if err := c.scheduler.Start(ctx); err != nil {
		c.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}

	// If in run-once mode, trigger shutdown and return
	if c.config.RunOnce {
		c.config.Log.Info("Tests completed, exiting (run-once mode)")

		// Check if any tests failed and return appropriate exit code
		if c.result != nil && c.result.Failed() {
			c.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(c.result.String())
		}

		// Only need to call this when we're in run-once mode and all tests passed
		go func() {
			c.shutdownCallback(nil)
		}()
		return nil // Success (exit code 0)
	}

	c.config.Log.Debug("caserun started successfully")
	return nil
}

// runTests executes every registered test case once and processes the
// results. The returned error is an engine fault, never a test outcome.
func (c *caserun) runTests() error {
	runID := uuid.New().String()
	c.config.Log.Info("Running all tests...", "run_id", runID)

	fileLogger, err := logging.NewFileLogger(c.config.LogDir, runID)
	if err != nil {
		metrics.RecordErrorDetails("failed to create file logger", err)
		return fmt.Errorf("failed to create file logger: %w", err)
	}

	programs := c.registry.Programs()
	if c.config.TargetSuite != "" {
		programs = c.registry.ProgramsBySuite(c.config.TargetSuite)
		if len(programs) == 0 {
			return fmt.Errorf("no test programs registered for suite %q", c.config.TargetSuite)
		}
	}

	result := &RunResult{RunID: runID}
	runStart := time.Now()

	for _, program := range programs {
		progResult, err := c.runProgram(program, fileLogger)
		if err != nil {
			metrics.RecordErrorDetails("failed to run test program", err)
			_ = fileLogger.Complete()
			return err
		}
		result.Programs = append(result.Programs, progResult)
		for _, cr := range progResult.Cases {
			result.Stats.record(cr.Result.Kind)
		}
	}
	result.Duration = time.Since(runStart)

	c.result = result
	c.printResultsTable(result)
	fmt.Println(result.String())
	if err := fileLogger.LogSummary(result.String()); err != nil {
		c.config.Log.Error("Failed to write run summary", "error", err)
	}
	if err := fileLogger.Complete(); err != nil {
		c.config.Log.Error("Failed to close file logger", "error", err)
	}

	c.reporter.ReportResults(runID, result)
	c.config.Log.Info("Test run completed",
		"run_id", runID,
		"failed", result.Failed(),
		"artifacts", fileLogger.RunDir())
	return nil
}

// runProgram discovers and executes the test cases of one program. A
// program whose cases cannot be listed aborts the run; individual case
// outcomes, including broken ones, never do.
func (c *caserun) runProgram(program engine.TestProgram, fileLogger *logging.FileLogger) (*ProgramResult, error) {
	suiteName := program.TestSuiteName()
	c.config.Log.Info("Running test program", "suite", suiteName, "binary", program.Binary())

	cases, err := program.LoadTestCases()
	if err != nil {
		return nil, fmt.Errorf("failed to load test cases from %s: %w", program.Binary(), err)
	}

	progResult := &ProgramResult{
		Binary: program.Binary(),
		Suite:  suiteName,
	}
	progStart := time.Now()

	for _, testCase := range cases {
		stdoutPath, stderrPath, err := fileLogger.CaseCapture(suiteName, program.Binary(), testCase.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to allocate capture files for %s: %w", testCase.Name(), err)
		}

		hooks := &logging.CaptureHooks{}
		caseStart := time.Now()
		res, err := testCase.Debug(c.runtimeCfg, hooks, stdoutPath, stderrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to execute test case %s: %w", testCase.Name(), err)
		}
		duration := time.Since(caseStart)

		cr := &CaseResult{
			Suite:      suiteName,
			Program:    program.Binary(),
			Name:       testCase.Name(),
			Result:     res,
			Duration:   duration,
			StdoutPath: hooks.StdoutPath,
			StderrPath: hooks.StderrPath,
		}
		progResult.Cases = append(progResult.Cases, cr)
		progResult.Stats.record(res.Kind)

		metrics.RecordTestCase(fileLogger.RunID(), suiteName, program.Binary(), res.Kind)
		summary := fmt.Sprintf("%s/%s: %s", suiteName, testCase.Name(), res)
		if err := fileLogger.LogSummary(summary); err != nil {
			c.config.Log.Error("Failed to write case summary", "error", err)
		}

		c.config.Log.Debug("Test case finished",
			"suite", suiteName,
			"case", testCase.Name(),
			"result", res.Kind,
			"duration", duration)
	}

	progResult.Duration = time.Since(progStart)
	return progResult, nil
}

// Stop stops the caserun service.
func (c *caserun) Stop(ctx context.Context) error {
	c.config.Log.Info("Stopping caserun")

	if c.scheduler.Stopped() {
		c.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	c.scheduler.Stop()
	c.config.Log.Info("caserun stopped successfully")
	return nil
}

// Stopped returns true if the caserun service is stopped.
func (c *caserun) Stopped() bool {
	return c.scheduler.Stopped()
}

// WaitForShutdown blocks until the scheduler loop has drained.
func (c *caserun) WaitForShutdown(ctx context.Context) error {
	return c.scheduler.Drain(ctx)
}
