package runner

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/caserun/caserun/engine"
	"github.com/stretchr/testify/assert"
)

func TestClassifyExit(t *testing.T) {
	tests := []struct {
		name       string
		outcome    ProcessOutcome
		properties map[string]string
		wantKind   engine.ResultKind
	}{
		{
			name:     "clean exit passes",
			outcome:  ProcessOutcome{ExitStatus: 0},
			wantKind: engine.ResultPassed,
		},
		{
			name:     "non-zero exit fails",
			outcome:  ProcessOutcome{ExitStatus: 1},
			wantKind: engine.ResultFailed,
		},
		{
			name:       "non-zero exit with expected failure",
			outcome:    ProcessOutcome{ExitStatus: 1},
			properties: map[string]string{PropExpectedFailure: "known bug #42"},
			wantKind:   engine.ResultExpectedFailure,
		},
		{
			name:     "timeout is broken",
			outcome:  ProcessOutcome{TimedOut: true, Duration: 2 * time.Second},
			wantKind: engine.ResultBroken,
		},
		{
			name:       "timeout is broken even with expected failure",
			outcome:    ProcessOutcome{TimedOut: true},
			properties: map[string]string{PropExpectedFailure: "known bug"},
			wantKind:   engine.ResultBroken,
		},
		{
			name:     "signal is broken",
			outcome:  ProcessOutcome{ExitStatus: -1, Signaled: true, Signal: syscall.SIGSEGV},
			wantKind: engine.ResultBroken,
		},
		{
			name:     "unstartable program is broken",
			outcome:  ProcessOutcome{StartErr: errors.New("no such file")},
			wantKind: engine.ResultBroken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyExit(&tt.outcome, tt.properties)
			assert.Equal(t, tt.wantKind, result.Kind)
			if result.Kind != engine.ResultPassed {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestMaybeExpectedFailureReason(t *testing.T) {
	result := maybeExpectedFailure(
		engine.NewResult(engine.ResultFailed, "assertion failed"),
		map[string]string{PropExpectedFailure: "known bug #42"})
	assert.Equal(t, engine.NewResult(engine.ResultExpectedFailure, "known bug #42"), result)

	// Skips are never rewritten.
	skipped := engine.NewResult(engine.ResultSkipped, "no network")
	assert.Equal(t, skipped, maybeExpectedFailure(skipped, map[string]string{PropExpectedFailure: "x"}))
}
