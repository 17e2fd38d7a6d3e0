// Package renewal links registrations to the renewal filings that cite their
// registration numbers.
//
// Renewals are indexed once by hyphen-stripped registration number. Match
// resolves a registration to zero, one, or several candidates using a fixed
// tie-break order (date, author, title) and records every renewal it hands
// out so the unmatched remainder can be reported at the end of a run.
package renewal
