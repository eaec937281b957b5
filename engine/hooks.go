package engine

// Hooks lets a caller observe the filesystem locations that receive a test
// case's captured standard output and standard error while the case runs.
// A well-behaved execution invokes each method at most once, always before
// Run returns, as soon as the corresponding path is known; no ordering
// between the two calls is guaranteed.
//
// The reported files may live inside a private scratch directory that is
// deleted when the execution finishes, so they should be consumed within
// the callback or before Run returns.
//
// Hook implementations must not fail in ways that abort the test; any
// error handling inside a hook is the caller's responsibility.
type Hooks interface {
	GotStdout(path string)
	GotStderr(path string)
}

// NopHooks ignores all notifications. Embed or pass it when the capture
// paths are of no interest.
type NopHooks struct{}

func (NopHooks) GotStdout(string) {}

func (NopHooks) GotStderr(string) {}
