// Package record defines the typed entities the pipeline links together:
// registrations (with their publishers, owned children, and an immutable
// parent snapshot), renewals, and cross-references extracted from notes.
//
// Registrations are created once per ingestion pass. Only the warnings,
// disposition, error, and renewals fields change afterwards, as a record
// moves through classification. Dates are parsed lazily and the parsed form
// is written back onto each RegDate so the output carries it.
package record
