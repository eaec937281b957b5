package caserun

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/caserun/caserun/engine"
	"github.com/caserun/caserun/metrics"
)

// MetricsReporter is responsible for reporting metrics from test results.
type MetricsReporter interface {
	ReportResults(runID string, result *RunResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the test results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, result *RunResult) {
	status := "pass"
	if result.Failed() {
		status = "fail"
	}
	metrics.RecordRun(
		runID,
		status,
		result.Stats.Total,
		result.Stats.Good(),
		result.Duration,
	)
}

// printResultsTable prints the results of the test run to the console.
func (c *caserun) printResultsTable(result *RunResult) {
	c.config.Log.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Test Run Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Passed", "Failed", "Broken", "Skipped", "Result", "Reason",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Broken", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Reason", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, program := range result.Programs {
		// Program row - show case counts but no "1" in Tests column
		t.AppendRow(table.Row{
			"Program",
			fmt.Sprintf("%s (%s)", program.Binary, program.Suite),
			formatDuration(program.Duration),
			"-", // Don't count the program itself as a test
			program.Stats.Passed,
			program.Stats.Failed,
			program.Stats.Broken,
			program.Stats.Skipped,
			programResultString(program.Stats),
			"",
		})

		for i, testCase := range program.Cases {
			prefix := "├──"
			if i == len(program.Cases)-1 {
				prefix = "└──"
			}
			t.AppendRow(table.Row{
				"Case",
				fmt.Sprintf("%s %s", prefix, testCase.Name),
				formatDuration(testCase.Duration),
				"1", // Count actual case
				boolToInt(testCase.Result.Kind == engine.ResultPassed),
				boolToInt(testCase.Result.Kind == engine.ResultFailed),
				boolToInt(testCase.Result.Kind == engine.ResultBroken),
				boolToInt(testCase.Result.Kind == engine.ResultSkipped),
				caseResultString(testCase.Result),
				testCase.Result.Reason,
			})
		}

		t.AppendSeparator()
	}

	// Update the table style setting based on run outcome
	if result.Failed() {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else if result.Stats.Skipped > 0 {
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	// Add summary footer
	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Broken,
		result.Stats.Skipped,
		programResultString(result.Stats),
		"",
	})

	t.Render()
}

// Helper function to convert bool to int
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// caseResultString returns a short marker representing one case outcome.
func caseResultString(result engine.Result) string {
	switch result.Kind {
	case engine.ResultPassed:
		return "✓ pass"
	case engine.ResultSkipped:
		return "- skip"
	case engine.ResultExpectedFailure:
		return "~ xfail"
	case engine.ResultBroken:
		return "✗ broken"
	default:
		return "✗ fail"
	}
}

// programResultString summarizes the outcomes of one program or run.
func programResultString(stats Stats) string {
	if stats.Bad() {
		return "✗ fail"
	}
	if stats.Passed == 0 && stats.Skipped > 0 {
		return "- skip"
	}
	return "✓ pass"
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
