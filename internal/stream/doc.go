// Package stream reads newline-delimited JSON inputs and writes the named
// append-only output streams of a run.
//
// Readers never stop on a bad line: the decode error is handed to the
// caller together with the raw text so the record can be routed to the
// error bucket. A DirSink writes one <name>.ndjson file per stream inside an
// output directory that it locks for the duration of the run.
package stream
