package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureHooks records the paths passed to the hooks for later validation.
type captureHooks struct {
	stdoutPath  string
	stderrPath  string
	stdoutCalls int
	stderrCalls int
}

func (h *captureHooks) GotStdout(path string) {
	h.stdoutPath = path
	h.stdoutCalls++
}

func (h *captureHooks) GotStderr(path string) {
	h.stderrPath = path
	h.stderrCalls++
}

// mockProgram is a test program whose discovery is never exercised here.
type mockProgram struct {
	ProgramBase
}

func newMockProgram(binary string) *mockProgram {
	return &mockProgram{ProgramBase: NewProgramBase(binary, "unused-root", "unused-suite-name")}
}

func (p *mockProgram) LoadTestCases() ([]*TestCase, error) {
	panic("not supposed to be called")
}

// mockBehavior fakes an execution: it reports fixed properties, insists on
// being given the exact config instance it was built with, notifies both
// hooks with fake paths, and returns a fixed skipped result.
type mockBehavior struct {
	expectedConfig *Config
}

func (b *mockBehavior) Properties() map[string]string {
	return map[string]string{"first": "value"}
}

func (b *mockBehavior) Execute(cfg *Config, hooks Hooks, stdoutPath, stderrPath string) (Result, error) {
	if cfg != b.expectedConfig {
		return Result{}, errors.New("invalid config object")
	}
	hooks.GotStdout("fake-stdout.txt")
	hooks.GotStderr("fake-stderr.txt")
	return NewResult(ResultSkipped, "A test result"), nil
}

func TestTestCaseCtorAndGetters(t *testing.T) {
	program := newMockProgram("abc")
	testCase := NewTestCase(program, "foo", &mockBehavior{})

	assert.Same(t, program, testCase.TestProgram())
	assert.Equal(t, "foo", testCase.Name())
}

func TestTestCaseAllPropertiesDelegates(t *testing.T) {
	program := newMockProgram("foo")
	testCase := NewTestCase(program, "bar", &mockBehavior{})

	assert.Equal(t, map[string]string{"first": "value"}, testCase.AllProperties())
}

func TestTestCaseRunDelegates(t *testing.T) {
	cfg := &Config{
		Architecture: "mock-architecture",
		Platform:     "mock-platform",
	}
	program := newMockProgram("foo")
	testCase := NewTestCase(program, "bar", &mockBehavior{expectedConfig: cfg})

	hooks := &captureHooks{}
	result, err := testCase.Run(cfg, hooks)
	require.NoError(t, err)

	assert.Equal(t, NewResult(ResultSkipped, "A test result"), result)
	assert.Equal(t, "fake-stdout.txt", hooks.stdoutPath)
	assert.Equal(t, "fake-stderr.txt", hooks.stderrPath)
	assert.Equal(t, 1, hooks.stdoutCalls)
	assert.Equal(t, 1, hooks.stderrCalls)
}

func TestTestCaseRunForeignConfigIsAFault(t *testing.T) {
	cfg := &Config{Architecture: "mock-architecture"}
	program := newMockProgram("foo")
	testCase := NewTestCase(program, "bar", &mockBehavior{expectedConfig: cfg})

	// A structurally identical but distinct instance must be rejected
	// through the error channel, not reported as a Result.
	foreign := &Config{Architecture: "mock-architecture"}
	_, err := testCase.Run(foreign, NopHooks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config object")
}

func TestProgramBaseAccessors(t *testing.T) {
	base := NewProgramBase("/bin/the-binary", "/suite/root", "the-suite")
	assert.Equal(t, "/bin/the-binary", base.Binary())
	assert.Equal(t, "/suite/root", base.Root())
	assert.Equal(t, "the-suite", base.TestSuiteName())
}

func TestNopHooksDoNothing(t *testing.T) {
	// Must be callable without side effects.
	hooks := NopHooks{}
	hooks.GotStdout("ignored")
	hooks.GotStderr("ignored")
}
