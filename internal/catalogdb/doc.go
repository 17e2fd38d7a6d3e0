// Package catalogdb persists blocked catalog entries in SQLite so a large
// catalog dump is normalized once and reused across matching runs.
//
// Store implements catalog.Source: candidate lookups are a single indexed
// query on the title key. Writes go through batched transactions and are
// retried while another connection holds the database.
package catalogdb
