package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/caserun/caserun/engine"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "caserun"
)

var (
	Debug      bool = true
	validKinds      = []engine.ResultKind{
		engine.ResultPassed,
		engine.ResultFailed,
		engine.ResultBroken,
		engine.ResultSkipped,
		engine.ResultExpectedFailure,
	}
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_cases_total",
		Help:      "Count of executed test cases by outcome",
	}, []string{
		"run_id",
		"suite",
		"program",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of whole test runs",
	}, []string{
		"run_id",
		"result",
	})

	runTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests_total",
		Help:      "Total number of test cases in a run",
	}, []string{
		"run_id",
	})

	runTestsGood = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests_good",
		Help:      "Number of non-regression outcomes in a run",
	}, []string{
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of whole test runs",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTestCase counts one executed test case by outcome kind.
func RecordTestCase(runID, suite, program string, kind engine.ResultKind) {
	if !isValidKind(kind) {
		log.Error("RecordTestCase - invalid result kind", "kind", kind)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "test_cases_total",
			"run_id", runID,
			"suite", suite,
			"program", program,
			"result", kind)
	}
	testCasesTotal.WithLabelValues(runID, suite, program, string(kind)).Inc()
}

// RecordRun records the aggregate outcome of one whole test run.
func RecordRun(
	runID string,
	result string,
	total int,
	good int,
	duration time.Duration,
) {
	runResults.WithLabelValues(runID, result).Set(1)
	runTestsTotal.WithLabelValues(runID).Add(float64(total))
	runTestsGood.WithLabelValues(runID).Add(float64(good))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidKind(kind engine.ResultKind) bool {
	return slices.Contains(validKinds, kind)
}
