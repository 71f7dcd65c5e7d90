package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/formcheck/internal/runner"
)

const metricsNamespace = "formcheck"

// suiteMetrics is one run's gauges on a private registry, so repeated runs
// in one process never collide
type suiteMetrics struct {
	registry *prometheus.Registry

	green     prometheus.Gauge
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
	wfPassed  *prometheus.GaugeVec
	wfAborted *prometheus.GaugeVec
	wfTime    *prometheus.GaugeVec
	attempts  *prometheus.GaugeVec
	results   *prometheus.GaugeVec
}

func newSuiteMetrics() *suiteMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &suiteMetrics{
		registry: reg,
		green: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_green",
			Help:      "1 when every workflow of the last run passed",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		wfPassed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_passed",
			Help:      "1 when the workflow passed",
		}, []string{"workflow"}),
		wfAborted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_aborted",
			Help:      "1 when the workflow was aborted",
		}, []string{"workflow"}),
		wfTime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_duration_seconds",
			Help:      "Wall time of the reported attempt",
		}, []string{"workflow"}),
		attempts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_attempts",
			Help:      "Attempts used, including retries",
		}, []string{"workflow"}),
		results: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "scenario_results",
			Help:      "Scenario results by outcome",
		}, []string{"workflow", "outcome"}),
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (m *suiteMetrics) observe(rep *runner.SuiteReport) {
	m.green.Set(boolGauge(rep.Green()))
	m.duration.Set(rep.Duration().Seconds())
	if !rep.FinishedAt.IsZero() {
		m.lastRun.Set(float64(rep.FinishedAt.Unix()))
	}

	for _, w := range rep.Workflows {
		m.wfPassed.WithLabelValues(w.Workflow).Set(boolGauge(w.Passed()))
		m.wfAborted.WithLabelValues(w.Workflow).Set(boolGauge(w.Aborted))
		m.wfTime.WithLabelValues(w.Workflow).Set(w.Duration().Seconds())
		m.attempts.WithLabelValues(w.Workflow).Set(float64(w.Attempt))

		var passed, failed, timedOut int
		for _, r := range w.Results {
			switch {
			case r.Passed:
				passed++
			case r.TimedOut:
				timedOut++
			default:
				failed++
			}
		}
		m.results.WithLabelValues(w.Workflow, "passed").Set(float64(passed))
		m.results.WithLabelValues(w.Workflow, "failed").Set(float64(failed))
		m.results.WithLabelValues(w.Workflow, "timed_out").Set(float64(timedOut))
	}
}

// WriteMetrics writes the report as a Prometheus textfile for the node
// exporter's textfile collector. The file is replaced atomically.
func WriteMetrics(rep *runner.SuiteReport, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	m := newSuiteMetrics()
	m.observe(rep)

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
