package metrics

import "time"

// Recorder collects session metrics.
// PrometheusMetrics is the only production implementation.
type Recorder interface {
	// IncrementSelections counts one menu answer by outcome.
	IncrementSelections(outcome string)

	// IncrementScansTotal counts one scanner invocation by flag and status.
	IncrementScansTotal(flag, status string)

	// RecordScanDuration observes how long one invocation took.
	RecordScanDuration(flag string, d time.Duration)

	// Summary returns the totals gathered so far.
	Summary() (Summary, error)
}

// Ensure that PrometheusMetrics implements Recorder.
var _ Recorder = (*PrometheusMetrics)(nil)
