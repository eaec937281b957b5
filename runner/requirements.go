package runner

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/caserun/caserun/engine"
)

// checkRequirements evaluates the pre-spawn requirements declared in a test
// case's metadata against the run-time configuration. It returns a
// non-empty reason when the case should be skipped without ever spawning
// the program, and the empty string when all requirements hold.
func checkRequirements(properties map[string]string, cfg *engine.Config) string {
	if allowed := splitList(properties[PropAllowedArchitectures]); len(allowed) > 0 {
		if !slices.Contains(allowed, cfg.Architecture) {
			return fmt.Sprintf("Current architecture '%s' not supported", cfg.Architecture)
		}
	}

	if allowed := splitList(properties[PropAllowedPlatforms]); len(allowed) > 0 {
		if !slices.Contains(allowed, cfg.Platform) {
			return fmt.Sprintf("Current platform '%s' not supported", cfg.Platform)
		}
	}

	for _, file := range splitList(properties[PropRequiredFiles]) {
		if _, err := os.Stat(file); err != nil {
			return fmt.Sprintf("Required file '%s' not found", file)
		}
	}

	for _, program := range splitList(properties[PropRequiredPrograms]) {
		if _, err := exec.LookPath(program); err != nil {
			return fmt.Sprintf("Required program '%s' not found in PATH", program)
		}
	}

	return ""
}

func splitList(value string) []string {
	return strings.Fields(value)
}
