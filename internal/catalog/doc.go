// Package catalog links registrations to library catalog records.
//
// Catalog records are blocked by title key, the two longest words of the
// normalized title, and only records sharing a registration's key are
// scored. The score starts from title similarity and subtracts date and
// author penalties, both amplified for generic titles. Scores are diluted
// when a registration draws many candidates, and the survivors are ranked
// for manual review.
//
// Candidates come from a Source: the in-memory Index built by the loaders in
// this package, or the SQLite store in internal/catalogdb.
package catalog
