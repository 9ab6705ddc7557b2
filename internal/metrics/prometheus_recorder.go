package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "astdoc"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	hookDuration     *prom.HistogramVec
	transformResults *prom.CounterVec
	rescans          *prom.CounterVec
	stageDuration    *prom.HistogramVec
	runDuration      prom.Histogram
	runOutcome       *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		hookDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_hook_duration_seconds",
			Help:      "Duration of transform hook invocations",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"transform", "hook"}),
		transformResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "transform_results_total",
			Help:      "Transform hook results by outcome",
		}, []string{"transform", "result"}),
		rescans: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rescans_total",
			Help:      "Rescan signals by scope (local restart or bubbled to parent)",
		}, []string{"scope"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.hookDuration, pr.transformResults, pr.rescans, pr.stageDuration, pr.runDuration, pr.runOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveHookDuration(transform, hook string, d time.Duration) {
	if p == nil {
		return
	}
	p.hookDuration.WithLabelValues(transform, hook).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransformResult(transform string, result ResultLabel) {
	if p == nil {
		return
	}
	p.transformResults.WithLabelValues(transform, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRescan(scope string) {
	if p == nil {
		return
	}
	p.rescans.WithLabelValues(scope).Inc()
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}
