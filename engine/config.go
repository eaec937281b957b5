package engine

// Config is the run-time configuration an execution honors: the target
// architecture and platform names, an optional test-suite filter, and the
// per-suite variable sets. It is produced by an external collaborator
// (see the registry package) and treated as read-only by the engine.
//
// Config values are passed by pointer so that concrete test cases can tell
// whether they were handed the instance they were constructed against;
// receiving a foreign instance is an engine fault, not a test outcome.
type Config struct {
	Architecture string                       `yaml:"architecture"`
	Platform     string                       `yaml:"platform"`
	TestSuite    string                       `yaml:"test_suite,omitempty"`
	TestSuites   map[string]map[string]string `yaml:"test_suites,omitempty"`
}

// SuiteVars returns the variable set configured for the named test suite.
// When the config carries a test-suite filter, only the filtered suite's
// variables apply; every other suite resolves to nil.
func (c *Config) SuiteVars(suite string) map[string]string {
	if c.TestSuite != "" && c.TestSuite != suite {
		return nil
	}
	return c.TestSuites[suite]
}
