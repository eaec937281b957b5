package engine

import "fmt"

// ResultKind classifies the outcome of one test case execution.
type ResultKind string

const (
	// ResultPassed means the test ran and its checks succeeded.
	ResultPassed ResultKind = "passed"
	// ResultFailed means the test ran and reported a failed assertion.
	ResultFailed ResultKind = "failed"
	// ResultBroken means the test could not be evaluated meaningfully: the
	// program crashed, timed out, or violated the execution protocol.
	ResultBroken ResultKind = "broken"
	// ResultSkipped means the test declined to run under the current
	// environment or configuration.
	ResultSkipped ResultKind = "skipped"
	// ResultExpectedFailure means the test failed but was pre-declared as
	// expected to fail, so the failure is not a regression.
	ResultExpectedFailure ResultKind = "expected_failure"
)

// Result is the classified outcome of one test case execution. Results are
// first-class data returned from every execution: a failing test is never
// reported as a Go error. The reason is empty for passed results and
// carries the explanation for every other kind.
type Result struct {
	Kind   ResultKind
	Reason string
}

// NewResult builds a result of the given kind with an explanatory reason.
func NewResult(kind ResultKind, reason string) Result {
	return Result{Kind: kind, Reason: reason}
}

// Passed returns the canonical passed result.
func Passed() Result {
	return Result{Kind: ResultPassed}
}

// Good reports whether the result does not denote a regression. Skipped and
// expected failures count as good alongside passes.
func (r Result) Good() bool {
	switch r.Kind {
	case ResultPassed, ResultSkipped, ResultExpectedFailure:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	if r.Reason == "" {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}
