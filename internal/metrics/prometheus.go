// Package metrics provides Prometheus-based counters for an interactive
// easymap session: menu selections, scans launched and how long they took.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all easymap metrics
	namespace = "easymap"

	// Subsystems
	subsystemMenu = "menu"
	subsystemScan = "scan"
)

// Selection outcomes.
const (
	OutcomeOption     = "option"
	OutcomeUnknownKey = "unknown_key"
	OutcomeNotNumber  = "not_a_number"
	OutcomeExit       = "exit"
)

// Scan statuses. They are recorded for observability only and never shown
// to the user as a verdict on the scan.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	selections   *prometheus.CounterVec
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec

	startTime time.Time
	registry  *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),
	}

	pm.selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemMenu,
			Name:      "selections_total",
			Help:      "Menu inputs by outcome",
		},
		[]string{"outcome"},
	)

	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Scans launched by flag and status",
		},
		[]string{"flag", "status"},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of scanner invocations in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0},
		},
		[]string{"flag"},
	)

	pm.registry.MustRegister(pm.selections, pm.scansTotal, pm.scanDuration)

	return pm
}

// IncrementSelections counts one menu input
func (pm *PrometheusMetrics) IncrementSelections(outcome string) {
	pm.selections.WithLabelValues(outcome).Inc()
}

// IncrementScansTotal counts one scanner invocation
func (pm *PrometheusMetrics) IncrementScansTotal(flag, status string) {
	pm.scansTotal.WithLabelValues(flag, status).Inc()
}

// RecordScanDuration records how long a scanner invocation took
func (pm *PrometheusMetrics) RecordScanDuration(flag string, duration time.Duration) {
	pm.scanDuration.WithLabelValues(flag).Observe(duration.Seconds())
}

// GetUptime returns how long the metrics instance has existed
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// Summary totals a session's counters.
type Summary struct {
	Selections int
	Scans      int
	Failed     int
	Uptime     time.Duration
}

// Summary gathers the registry and totals the counters across label values
func (pm *PrometheusMetrics) Summary() (Summary, error) {
	families, err := pm.registry.Gather()
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Uptime: pm.GetUptime()}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := int(m.GetCounter().GetValue())
			switch mf.GetName() {
			case namespace + "_" + subsystemMenu + "_selections_total":
				sum.Selections += value
			case namespace + "_" + subsystemScan + "_total":
				sum.Scans += value
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "status" && lp.GetValue() == StatusFailed {
						sum.Failed += value
					}
				}
			}
		}
	}
	return sum, nil
}

// Global instance for easy access
var globalMetrics *PrometheusMetrics
var metricsOnce sync.Once

// GetGlobalMetrics returns the global Prometheus metrics instance
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
