package runner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Verdict is the self-reported outcome a Go test binary prints for one
// test function.
type Verdict int

const (
	// VerdictNone means the output contained no recognizable verdict.
	VerdictNone Verdict = iota
	VerdictPass
	VerdictFail
	VerdictSkip
)

const (
	passMarker = "--- PASS: "
	failMarker = "--- FAIL: "
	skipMarker = "--- SKIP: "

	// Detail lines kept as the reason for a failed or skipped verdict.
	maxReasonLines = 5
)

// parseTestList reads the output of a test binary invoked with -test.list
// and returns the test function names, one per line. Non-name lines (the
// trailing "ok" status, empty lines) are ignored. An empty list is valid:
// a test binary may genuinely contain no test functions.
func parseTestList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.ContainsAny(line, " \t") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test list output: %w", err)
	}
	return names, nil
}

// parseVerdict scans the verbose output of a test binary run with
// -test.run for the named test's verdict. The reason aggregates the
// indented detail lines following the verdict marker, which is where the
// test binary prints skip reasons and failure locations.
func parseVerdict(r io.Reader, testName string) (Verdict, string) {
	verdict := VerdictNone
	var reason []string
	collecting := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == passMarker+testName || strings.HasPrefix(trimmed, passMarker+testName+" "):
			verdict = VerdictPass
			collecting = false
		case trimmed == failMarker+testName || strings.HasPrefix(trimmed, failMarker+testName+" "):
			verdict = VerdictFail
			collecting = true
			reason = nil
		case trimmed == skipMarker+testName || strings.HasPrefix(trimmed, skipMarker+testName+" "):
			verdict = VerdictSkip
			collecting = true
			reason = nil
		case collecting:
			// Detail lines are indented under the verdict marker; the next
			// top-level line ends the block.
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				if trimmed != "" && len(reason) < maxReasonLines {
					reason = append(reason, trimmed)
				}
			} else {
				collecting = false
			}
		}
	}

	return verdict, strings.Join(reason, "\n")
}
