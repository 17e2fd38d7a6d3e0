// Package disposition assigns every registration exactly one terminal bucket.
//
// The Pipeline walks a registration tree depth-first. Each record passes
// through the funnel error, foreign, interim, not-a-book, too-old, too-new
// and finally renewal matching for the in-range buckets. A child that lands
// in range while its parent did not is moved into the parent's bucket and
// flagged for manual review.
package disposition
