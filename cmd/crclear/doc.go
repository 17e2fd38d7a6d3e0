// Package main hosts the crclear CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the shared
// slog logger, and hands each subcommand a stage-scoped logger. classify
// runs the disposition funnel over registration files and writes one NDJSON
// file per bucket; catalog index and catalog match build and query the
// title-key index used to find catalog candidates for manual review.
//
// Keep this package thin: behavior lives in the internal packages and the
// commands here only wire inputs, outputs, and summaries together.
package main
