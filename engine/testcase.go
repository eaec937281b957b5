package engine

// CaseBehavior is the capability set a concrete test-program technology
// implements for each of its test cases: exposing the case's metadata and
// actually invoking the underlying program.
type CaseBehavior interface {
	// Properties returns the metadata of the test case as a free-form
	// property name to value mapping. The engine imposes no key set;
	// implementations document the keys they honor (timeout, requirements,
	// expected-failure reason). Must be pure: no side effects, same value
	// for the lifetime of the case.
	Properties() map[string]string

	// Execute runs the underlying program and classifies its outcome.
	// Implementations spawn the program in a private scratch directory,
	// capture stdout/stderr to files, report both paths through hooks
	// before returning, and enforce their timeout policy.
	//
	// stdoutPath and stderrPath override where the standard streams are
	// captured; when empty the implementation chooses its own files.
	//
	// Ordinary test failures are Results; the error return is reserved for
	// engine faults such as a nil or foreign config.
	Execute(cfg *Config, hooks Hooks, stdoutPath, stderrPath string) (Result, error)
}

// TestCase is one individually executable test: a name unique within its
// owning program, a non-owning back-reference to that program, and the
// behavior implementing the concrete technology. Identity is immutable;
// Run may be invoked any number of times.
type TestCase struct {
	program  TestProgram
	name     string
	behavior CaseBehavior
}

// NewTestCase binds a test case to its owning program. The program must
// outlive the case.
func NewTestCase(program TestProgram, name string, behavior CaseBehavior) *TestCase {
	return &TestCase{program: program, name: name, behavior: behavior}
}

// TestProgram returns the program this test case belongs to.
func (tc *TestCase) TestProgram() TestProgram {
	return tc.program
}

// Name returns the test case name, relative to the test program.
func (tc *TestCase) Name() string {
	return tc.name
}

// AllProperties returns the metadata of the test case exactly as the
// underlying behavior reports it.
func (tc *TestCase) AllProperties() map[string]string {
	return tc.behavior.Properties()
}

// Run executes the test case under the given configuration and returns the
// classified result. The config and hooks are handed to the behavior
// unchanged and exactly one Result is produced per invocation. The call
// blocks until the subordinate process finishes or times out.
func (tc *TestCase) Run(cfg *Config, hooks Hooks) (Result, error) {
	return tc.behavior.Execute(cfg, hooks, "", "")
}

// Debug executes the test case like Run but redirects the captured standard
// streams to the given paths, which the caller controls and can inspect
// after the call. Useful for interactive debugging of a single case.
func (tc *TestCase) Debug(cfg *Config, hooks Hooks, stdoutPath, stderrPath string) (Result, error) {
	return tc.behavior.Execute(cfg, hooks, stdoutPath, stderrPath)
}
