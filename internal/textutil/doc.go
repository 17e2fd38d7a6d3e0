// Package textutil canonicalizes titles and personal names so records from
// different sources can be compared.
//
// The primary use cases are:
//   - Normalizing registration, renewal, and catalog titles (Title,
//     CatalogTitle) and author or claimant names (Name)
//   - Building approximate blocking keys from the two longest title words
//   - Word-set overlap tests and character edit distance for fuzzy matching
//   - Sanitizing tokens for safe use in output file names
//
// Normalization lowercases text, folds accented letters to their base form,
// replaces every other non-alphanumeric rune with a space, and collapses runs
// of whitespace. A Normalizer memoizes results keyed by the raw input.
package textutil
