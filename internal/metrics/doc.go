// Package metrics records asset-build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	type Builder struct {
//		recorder metrics.Recorder
//	}
//
//	b.recorder.ObserveStepDuration("npm_install", elapsed)
//	b.recorder.IncStepResult("npm_install", metrics.ResultRan)
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// A one-shot CLI has no scrape endpoint, so WriteTextfile dumps the registry
// in the node-exporter textfile format instead.
package metrics
