// Package metrics exposes prometheus instrumentation for validation runs.
//
// Metrics are registered against an injected *prometheus.Registry so
// tests and embedders control registration; nothing registers globally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckMetrics tracks validation run activity.
//
// Metrics:
//   - callisto_checks_total: validation runs by overall status
//   - callisto_check_duration_seconds: end-to-end run duration
//   - callisto_rule_outcomes_total: per-rule outcomes by status
//   - callisto_parse_errors_total: parse failures by input kind
type CheckMetrics struct {
	checksTotal      *prometheus.CounterVec
	checkDuration    prometheus.Histogram
	ruleOutcomes     *prometheus.CounterVec
	parseErrorsTotal *prometheus.CounterVec
}

// NewCheckMetrics creates and registers check metrics with the provided
// registry.
func NewCheckMetrics(namespace string, registry *prometheus.Registry) *CheckMetrics {
	cm := &CheckMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total number of validation runs",
			},
			[]string{"status"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				// Runs are in-memory tree walks; expect well under a second.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
		),
		ruleOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_outcomes_total",
				Help:      "Total per-rule outcomes by status",
			},
			[]string{"rule", "status"},
		),
		parseErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Total parse failures by input kind",
			},
			[]string{"input"},
		),
	}

	registry.MustRegister(
		cm.checksTotal,
		cm.checkDuration,
		cm.ruleOutcomes,
		cm.parseErrorsTotal,
	)

	return cm
}

// RecordCheck records one completed validation run.
func (cm *CheckMetrics) RecordCheck(status string, duration time.Duration) {
	if cm == nil {
		return
	}
	cm.checksTotal.WithLabelValues(status).Inc()
	cm.checkDuration.Observe(duration.Seconds())
}

// RecordRuleOutcome records the outcome of one rule within a run.
func (cm *CheckMetrics) RecordRuleOutcome(rule, status string) {
	if cm == nil {
		return
	}
	cm.ruleOutcomes.WithLabelValues(rule, status).Inc()
}

// RecordParseError records a parse failure. The input kind is "document"
// or "rules".
func (cm *CheckMetrics) RecordParseError(input string) {
	if cm == nil {
		return
	}
	cm.parseErrorsTotal.WithLabelValues(input).Inc()
}
