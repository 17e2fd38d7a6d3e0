// Package config loads, normalizes, and validates crclear configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the CRCLEAR_OUTPUT_DIR and CRCLEAR_CUTOFF_YEAR
// environment fallbacks. The classification and catalog sections carry the
// tunable thresholds of the matching stages; stage code receives them through
// the policies built here rather than reading the file itself.
package config
