// Package metrics provides the observability hooks for astdoc runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	engine := transform.NewEngine(reg, transform.WithRecorder(metrics.NoopRecorder{}))
//
// When a metrics file is configured the CLI swaps in a PrometheusRecorder
// backed by its own registry and writes that registry in the node_exporter
// textfile format once the run has finished (see WriteTextfile).
package metrics
