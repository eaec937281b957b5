package logging

import "github.com/caserun/caserun/engine"

// CaptureHooks records where the engine captured a case's standard
// streams. A case that never spawned a process (skipped before execution)
// leaves both paths empty.
type CaptureHooks struct {
	StdoutPath string
	StderrPath string
}

var _ engine.Hooks = (*CaptureHooks)(nil)

func (h *CaptureHooks) GotStdout(path string) { h.StdoutPath = path }
func (h *CaptureHooks) GotStderr(path string) { h.StderrPath = path }
