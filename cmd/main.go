package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	caserun "github.com/caserun/caserun"
	"github.com/caserun/caserun/exitcodes"
	"github.com/caserun/caserun/flags"
	"github.com/caserun/caserun/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "caserun"
	app.Usage = "Test Case Execution Service"
	app.Description = "caserun discovers and runs registered test programs"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Check for typed runtime errors
			if caserun.IsRuntimeError(err) {
				// For engine faults, use exit code 2
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if caserun.IsTestFailureError(err) {
				// For test failures, use exit code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			} else {
				// For other unspecified errors, default to exit code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start healthz/metrics servers
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	// Start CLI
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	logger := log.NewLogger(log.NewTerminalHandler(os.Stderr, true))
	log.SetDefault(logger)

	cfg, err := caserun.NewConfig(cliCtx, logger, cliCtx.String(flags.Registry.Name))
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return caserun.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	appCtx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	svc, err := caserun.New(appCtx, cfg, Version, func(error) { cancel() })
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return caserun.NewRuntimeError(fmt.Errorf("failed to create caserun: %w", err))
	}

	if err := svc.Start(appCtx); err != nil {
		return err
	}

	if cfg.RunOnce {
		return nil
	}

	// Continuous mode: block until interrupted, then drain the scheduler.
	<-appCtx.Done()
	if err := svc.Stop(context.Background()); err != nil {
		logger.Error("Failed to stop service", "error", err)
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	return svc.WaitForShutdown(drainCtx)
}
