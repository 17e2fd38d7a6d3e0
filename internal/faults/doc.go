// Package faults defines the error taxonomy shared by the classification
// stages.
//
// Sentinel errors mark the category of a failure so callers can branch with
// errors.Is; Wrap attaches stage and operation context. Two sentinels are
// fatal for a single record (they route it to the error bucket) but never
// for the stream. Anomaly kinds name the non-fatal conditions that are only
// logged, annotated on the record, and counted.
package faults
