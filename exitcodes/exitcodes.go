// Package exitcodes defines the standard exit codes used by caserun.
package exitcodes

// Exit code constants used by caserun
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every test case reports a good outcome
// * TestFailure (1): Used when one or more test cases fail or break
// * RuntimeErr (2): Used for engine faults such as unreadable registries or panics
const (
	Success     = 0 // All test cases good
	TestFailure = 1 // Failed or broken test cases
	RuntimeErr  = 2 // Engine faults
)
