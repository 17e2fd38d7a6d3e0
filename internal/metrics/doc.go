// Package metrics counts what a run did, per bucket, anomaly, and stage,
// and writes the counts as a Prometheus textfile for node_exporter's
// textfile collector.
//
// Each Recorder owns a private registry so tests and repeated runs in one
// process do not share state.
package metrics
