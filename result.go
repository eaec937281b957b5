package caserun

import (
	"fmt"
	"time"

	"github.com/caserun/caserun/engine"
)

// CaseResult captures the outcome of one executed test case along with the
// timing and capture-file locations the engine reported.
type CaseResult struct {
	Suite      string
	Program    string
	Name       string
	Result     engine.Result
	Duration   time.Duration
	StdoutPath string
	StderrPath string
}

// ProgramResult aggregates the case results of one test program.
type ProgramResult struct {
	Binary   string
	Suite    string
	Cases    []*CaseResult
	Duration time.Duration
	Stats    Stats
}

// Stats tracks outcome counts at program and run level.
type Stats struct {
	Total            int
	Passed           int
	Failed           int
	Broken           int
	Skipped          int
	ExpectedFailures int
}

func (s *Stats) record(kind engine.ResultKind) {
	s.Total++
	switch kind {
	case engine.ResultPassed:
		s.Passed++
	case engine.ResultFailed:
		s.Failed++
	case engine.ResultBroken:
		s.Broken++
	case engine.ResultSkipped:
		s.Skipped++
	case engine.ResultExpectedFailure:
		s.ExpectedFailures++
	}
}

// Good returns the number of non-regression outcomes.
func (s Stats) Good() int {
	return s.Passed + s.Skipped + s.ExpectedFailures
}

// Bad reports whether the stats contain any regression.
func (s Stats) Bad() bool {
	return s.Failed > 0 || s.Broken > 0
}

// RunResult captures a complete test run.
type RunResult struct {
	RunID    string
	Programs []*ProgramResult
	Duration time.Duration
	Stats    Stats
}

// Failed reports whether the run contained failed or broken cases.
func (r *RunResult) Failed() bool {
	return r.Stats.Bad()
}

func (r *RunResult) String() string {
	status := "PASSED"
	if r.Failed() {
		status = "FAILED"
	}
	return fmt.Sprintf("Test run %s %s: %d/%d passed (%d failed, %d broken, %d skipped, %d expected failures) in %.1fs",
		r.RunID, status,
		r.Stats.Passed, r.Stats.Total,
		r.Stats.Failed, r.Stats.Broken, r.Stats.Skipped, r.Stats.ExpectedFailures,
		r.Duration.Seconds())
}
