package engine

// TestProgram represents one executable test binary: its identity within a
// test suite tree and the ability to enumerate the test cases it contains.
// Concrete implementations know how to introspect their particular binary
// format (see the runner package); the engine only depends on this contract.
type TestProgram interface {
	// Binary returns the path to the test program's executable.
	Binary() string

	// Root returns the root directory of the test suite tree the program
	// belongs to.
	Root() string

	// TestSuiteName returns the name of the test suite the program is part
	// of.
	TestSuiteName() string

	// LoadTestCases enumerates the test cases provided by the program, each
	// bound to this program. A discovery failure is reported as an error,
	// never as a partial list. Implementations may be called repeatedly and
	// are not required to cache.
	LoadTestCases() ([]*TestCase, error)
}

// ProgramBase carries the immutable identity of a test program. Concrete
// programs embed it and add their own LoadTestCases.
type ProgramBase struct {
	binary    string
	root      string
	suiteName string
}

// NewProgramBase builds the identity record for a test program.
func NewProgramBase(binary, root, suiteName string) ProgramBase {
	return ProgramBase{binary: binary, root: root, suiteName: suiteName}
}

func (p ProgramBase) Binary() string { return p.binary }

func (p ProgramBase) Root() string { return p.root }

func (p ProgramBase) TestSuiteName() string { return p.suiteName }
