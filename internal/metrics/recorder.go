package metrics

import "time"

// ResultLabel enumerates transform hook outcomes for counters.
type ResultLabel string

const (
	ResultApplied ResultLabel = "applied"
	ResultRescan  ResultLabel = "rescan"
	ResultFailed  ResultLabel = "failed"
)

// Rescan scopes.
const (
	ScopeLocal  = "local"
	ScopeBubble = "bubble"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder defines observability hooks for transform dispatch and whole runs.
// Implementations may forward to Prometheus or similar backends.
type Recorder interface {
	ObserveHookDuration(transform, hook string, d time.Duration)
	IncTransformResult(transform string, result ResultLabel)
	IncRescan(scope string)
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHookDuration(string, string, time.Duration) {}
func (NoopRecorder) IncTransformResult(string, ResultLabel)            {}
func (NoopRecorder) IncRescan(string)                                  {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration)        {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}
func (NoopRecorder) IncRunOutcome(string)                              {}
