package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CASERUN"

// prefixEnvVars names the environment variables that mirror a flag.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Registry = &cli.StringFlag{
		Name:     "registry",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("REGISTRY"),
		Usage:    "Path to the test registry file (eg. 'registry.yaml')",
	}
	RuntimeConfig = &cli.StringFlag{
		Name:    "runtime-config",
		Value:   "",
		EnvVars: prefixEnvVars("RUNTIME_CONFIG"),
		Usage:   "Path to the engine runtime config file (architecture, platform, suite variables)",
	}
	Suite = &cli.StringFlag{
		Name:    "suite",
		Value:   "",
		EnvVars: prefixEnvVars("SUITE"),
		Usage:   "Restrict the run to one test suite (eg. 'smoke')",
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   "",
		EnvVars: prefixEnvVars("WORKDIR"),
		Usage:   "Base directory for per-case scratch directories (defaults to the system temp directory)",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory to store run artifacts (capture files and summaries)",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "default-timeout",
		Value:   0,
		EnvVars: prefixEnvVars("DEFAULT_TIMEOUT"),
		Usage:   "Default timeout for individual test cases, can be overridden per program in the registry",
	}
)

var requiredFlags = []cli.Flag{
	Registry,
}

var optionalFlags = []cli.Flag{
	RuntimeConfig,
	Suite,
	WorkDir,
	LogDir,
	RunInterval,
	DefaultTimeout,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
