// Package logging persists test run artifacts: the per-case stdout/stderr
// capture files and a human-readable summary of each run.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
)

// RunDirectoryPrefix is the standardized prefix for run directories.
const RunDirectoryPrefix = "caserun-"

// FileLogger owns the directory layout of one test run:
//
//	<baseDir>/caserun-<runID>/<suite>/<program>.<case>.stdout
//	<baseDir>/caserun-<runID>/<suite>/<program>.<case>.stderr
//	<baseDir>/caserun-<runID>/summary.log
//
// Capture paths handed out by CaseCapture live outside any scratch
// directory, so they survive the execution that filled them.
type FileLogger struct {
	baseDir string
	runDir  string
	runID   string
	mu      sync.Mutex
	summary *AsyncFile
}

// NewFileLogger creates the run directory for runID under baseDir.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	runDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", runDir, err)
	}

	summary, err := NewAsyncFile(filepath.Join(runDir, "summary.log"))
	if err != nil {
		return nil, err
	}

	return &FileLogger{
		baseDir: baseDir,
		runDir:  runDir,
		runID:   runID,
		summary: summary,
	}, nil
}

// RunDir returns the directory holding this run's artifacts.
func (l *FileLogger) RunDir() string {
	return l.runDir
}

// RunID returns the run identifier the logger was created for.
func (l *FileLogger) RunID() string {
	return l.runID
}

// CaseCapture allocates the stdout/stderr capture paths for one test case
// and makes sure their directory exists. The files themselves are created
// by the execution.
func (l *FileLogger) CaseCapture(suiteName, programName, caseName string) (stdoutPath, stderrPath string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	suiteDir := filepath.Join(l.runDir, sanitizeFilename(suiteName))
	if err := os.MkdirAll(suiteDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create suite log directory %s: %w", suiteDir, err)
	}

	base := sanitizeFilename(filepath.Base(programName)) + "." + sanitizeFilename(caseName)
	return filepath.Join(suiteDir, base+".stdout"), filepath.Join(suiteDir, base+".stderr"), nil
}

// LogSummary appends one line to the run summary. ANSI escape sequences
// are stripped so the file stays readable outside a terminal.
func (l *FileLogger) LogSummary(line string) error {
	clean := stripansi.Strip(line)
	if !strings.HasSuffix(clean, "\n") {
		clean += "\n"
	}
	return l.summary.Write([]byte(clean))
}

// Complete flushes and closes the summary writer. Call once per run.
func (l *FileLogger) Complete() error {
	return l.summary.Close()
}

// sanitizeFilename keeps suite/program/case derived names safe to use as
// file names.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", string(filepath.Separator), "_", " ", "_")
	return replacer.Replace(name)
}
