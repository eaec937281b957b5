package caserun

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/caserun/caserun/flags"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the application configuration
type Config struct {
	RegistryPath   string        // Path to the test registry file
	RuntimeConfig  string        // Optional path to the engine runtime config file
	TargetSuite    string        // When set, restricts the run to one test suite
	WorkDir        string        // Base directory for per-case scratch directories
	LogDir         string        // Directory to store run artifacts
	RunInterval    time.Duration // Interval between test runs
	RunOnce        bool          // Indicates if the service should exit after one test run
	DefaultTimeout time.Duration // Default timeout for individual test cases
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, registryPath string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if registryPath == "" {
		return nil, errors.New("registry file is required")
	}

	absRegistryPath, err := filepath.Abs(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for registry '%s': %w", registryPath, err)
	}

	runtimeConfig := ctx.String(flags.RuntimeConfig.Name)
	if runtimeConfig != "" {
		runtimeConfig, err = filepath.Abs(runtimeConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for runtime config '%s': %w", runtimeConfig, err)
		}
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	return &Config{
		RegistryPath:   absRegistryPath,
		RuntimeConfig:  runtimeConfig,
		TargetSuite:    ctx.String(flags.Suite.Name),
		WorkDir:        ctx.String(flags.WorkDir.Name),
		LogDir:         logDir,
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		DefaultTimeout: ctx.Duration(flags.DefaultTimeout.Name),
		Log:            log,
	}, nil
}
