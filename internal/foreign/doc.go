// Package foreign decides whether a registration describes a work first
// published outside the United States.
//
// The Classifier applies ordered evidence rules to a single registration and
// records a verbatim warning for whichever rule fired. Registrations found
// definitely foreign contribute the cross-references in their notes to an
// Index; a later registration whose number appears in the Index is flagged as
// possibly foreign for manual review.
package foreign
