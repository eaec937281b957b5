package runner

import (
	"fmt"
	"time"

	"github.com/caserun/caserun/engine"
)

// Metadata property keys honored by the concrete test-program interfaces in
// this package. The engine itself imposes no key set; this is the contract
// the runner implementations document.
const (
	// PropTimeout is the maximum run duration for a case, in Go duration
	// syntax (e.g. "30s").
	PropTimeout = "timeout"
	// PropExpectedFailure declares that the case is expected to fail; its
	// value is the reason. A failed verdict becomes expected_failure.
	PropExpectedFailure = "expected_failure"
	// PropAllowedArchitectures is a space-separated list of architectures
	// the case may run on.
	PropAllowedArchitectures = "allowed_architectures"
	// PropAllowedPlatforms is a space-separated list of platforms the case
	// may run on.
	PropAllowedPlatforms = "allowed_platforms"
	// PropRequiredFiles is a space-separated list of files that must exist
	// for the case to run.
	PropRequiredFiles = "required_files"
	// PropRequiredPrograms is a space-separated list of binaries that must
	// be found in PATH for the case to run.
	PropRequiredPrograms = "required_programs"
)

// classifyExit turns a raw process outcome into a Result for interfaces
// whose verdict is the exit status alone. An unstartable program, a signal
// or a timeout all mean the test could not be evaluated, so they map to
// broken rather than failed; a non-zero exit is a failure unless the case
// was pre-declared as expected to fail.
func classifyExit(outcome *ProcessOutcome, properties map[string]string) engine.Result {
	if outcome.StartErr != nil {
		return engine.NewResult(engine.ResultBroken,
			fmt.Sprintf("Failed to execute the test program: %v", outcome.StartErr))
	}
	if outcome.TimedOut {
		return engine.NewResult(engine.ResultBroken,
			fmt.Sprintf("Test case timed out after %v", outcome.Duration.Round(time.Millisecond)))
	}
	if outcome.Signaled {
		return engine.NewResult(engine.ResultBroken,
			fmt.Sprintf("Received signal %d", outcome.Signal))
	}
	if outcome.ExitStatus == 0 {
		return engine.Passed()
	}
	return maybeExpectedFailure(
		engine.NewResult(engine.ResultFailed,
			fmt.Sprintf("Returned non-success exit status %d", outcome.ExitStatus)),
		properties)
}

// maybeExpectedFailure converts a failed result into expected_failure when
// the case metadata declares one. Broken and skipped results are never
// rewritten: a crash is a crash even in a test expected to fail.
func maybeExpectedFailure(result engine.Result, properties map[string]string) engine.Result {
	if result.Kind != engine.ResultFailed {
		return result
	}
	reason, ok := properties[PropExpectedFailure]
	if !ok || reason == "" {
		return result
	}
	return engine.NewResult(engine.ResultExpectedFailure, reason)
}
