package runner

import (
	"testing"

	"github.com/caserun/caserun/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGoTestBinary fakes a compiled Go test binary: it answers -test.list
// with a fixed set of test names and -test.run with a canned verbose
// verdict per test.
func fakeGoTestBinary(t *testing.T) string {
	t.Helper()
	return writeScript(t, t.TempDir(), "pkg.test", `case "$1" in
-test.list)
	echo TestPasses
	echo TestFails
	echo TestSkips
	;;
-test.run)
	case "$2" in
	'^TestPasses$')
		echo "=== RUN   TestPasses"
		echo "--- PASS: TestPasses (0.00s)"
		echo "PASS"
		exit 0
		;;
	'^TestFails$')
		echo "=== RUN   TestFails"
		echo "--- FAIL: TestFails (0.00s)"
		echo "    pkg_test.go:10: expected 1, got 2"
		echo "FAIL"
		exit 1
		;;
	'^TestSkips$')
		echo "=== RUN   TestSkips"
		echo "--- SKIP: TestSkips (0.00s)"
		echo "    pkg_test.go:20: requires network"
		echo "PASS"
		exit 0
		;;
	esac
	;;
esac`)
}

func loadCase(t *testing.T, program engine.TestProgram, name string) *engine.TestCase {
	t.Helper()
	cases, err := program.LoadTestCases()
	require.NoError(t, err)
	for _, testCase := range cases {
		if testCase.Name() == name {
			return testCase
		}
	}
	t.Fatalf("test case %q not found", name)
	return nil
}

func TestGoTestProgramDiscovery(t *testing.T) {
	program := NewGoTestProgram(fakeGoTestBinary(t), "/suite", "unit", newTestExecutor(t), ProgramOptions{})

	cases, err := program.LoadTestCases()
	require.NoError(t, err)
	require.Len(t, cases, 3)

	names := make([]string, 0, len(cases))
	for _, testCase := range cases {
		names = append(names, testCase.Name())
		assert.Same(t, program, testCase.TestProgram())
	}
	assert.Equal(t, []string{"TestPasses", "TestFails", "TestSkips"}, names)
}

func TestGoTestProgramDiscoveryFaultOnMissingBinary(t *testing.T) {
	program := NewGoTestProgram(t.TempDir()+"/missing.test", "/suite", "unit", newTestExecutor(t), ProgramOptions{})

	_, err := program.LoadTestCases()
	require.Error(t, err)
}

func TestGoTestProgramVerdicts(t *testing.T) {
	program := NewGoTestProgram(fakeGoTestBinary(t), "/suite", "unit", newTestExecutor(t), ProgramOptions{})
	cfg := &engine.Config{}

	t.Run("pass", func(t *testing.T) {
		result, err := loadCase(t, program, "TestPasses").Run(cfg, engine.NopHooks{})
		require.NoError(t, err)
		assert.Equal(t, engine.Passed(), result)
	})

	t.Run("fail carries the detail line", func(t *testing.T) {
		result, err := loadCase(t, program, "TestFails").Run(cfg, engine.NopHooks{})
		require.NoError(t, err)
		assert.Equal(t, engine.ResultFailed, result.Kind)
		assert.Contains(t, result.Reason, "expected 1, got 2")
	})

	t.Run("skip carries the reason", func(t *testing.T) {
		result, err := loadCase(t, program, "TestSkips").Run(cfg, engine.NopHooks{})
		require.NoError(t, err)
		assert.Equal(t, engine.ResultSkipped, result.Kind)
		assert.Contains(t, result.Reason, "requires network")
	})
}

func TestGoTestProgramMissingVerdictIsBroken(t *testing.T) {
	// A binary that crashes before printing any verdict.
	binary := writeScript(t, t.TempDir(), "crash.test", `case "$1" in
-test.list)
	echo TestBoom
	;;
-test.run)
	echo "panic: boom"
	exit 2
	;;
esac`)
	program := NewGoTestProgram(binary, "/suite", "unit", newTestExecutor(t), ProgramOptions{})

	result, err := loadCase(t, program, "TestBoom").Run(&engine.Config{}, engine.NopHooks{})
	require.NoError(t, err)
	assert.Equal(t, engine.ResultBroken, result.Kind)
	assert.Contains(t, result.Reason, "did not report a verdict")
}

func TestGoTestProgramHooksReceivePaths(t *testing.T) {
	program := NewGoTestProgram(fakeGoTestBinary(t), "/suite", "unit", newTestExecutor(t), ProgramOptions{})

	hooks := &recordingHooks{}
	_, err := loadCase(t, program, "TestPasses").Run(&engine.Config{}, hooks)
	require.NoError(t, err)
	assert.NotEmpty(t, hooks.stdoutPath)
	assert.NotEmpty(t, hooks.stderrPath)
}
