// Package logging assembles the structured slog loggers used by every crclear
// stage.
//
// It owns the console and JSON handlers, level parsing and output routing,
// per-stage level overrides, and the warning conventions (event_type,
// error_hint, impact) that make anomaly logs searchable. Long record streams
// report progress through ProgressCounter. NewNop provides a discard logger
// for tests and for components constructed without one.
package logging
