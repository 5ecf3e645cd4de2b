// Package prometheus provides Prometheus collectors for goSignup metrics.
//
// [NewPrometheusExporter] accepts a [goSignup.Engine] and exposes an [http.Handler]
// that renders all goSignup counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gosignup_*_total; the single histogram is
// gosignup_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
