package disposition

// Tally counts registrations per bucket.
type Tally struct {
	counts map[Bucket]int
}

// TallyRow is one line of the end-of-run summary. Percent is relative to
// Of, which names the population it was computed against.
type TallyRow struct {
	Bucket  Bucket
	Count   int
	Percent float64
	Of      string
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[Bucket]int)}
}

// Add counts one registration in bucket.
func (t *Tally) Add(bucket Bucket) {
	t.counts[bucket]++
}

// Count returns the number of registrations in bucket.
func (t *Tally) Count(bucket Bucket) int {
	return t.counts[bucket]
}

// Total returns the number of registrations counted.
func (t *Tally) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// InRange returns the number of registrations in the renewal buckets, the
// US publications eligible for renewal.
func (t *Tally) InRange() int {
	total := 0
	for bucket, n := range t.counts {
		if bucket.InRange() {
			total += n
		}
	}
	return total
}

// Rows summarizes every bucket in funnel order. In-range buckets are given
// as a share of US publications and foreign as a share of foreign plus US
// publications; the remaining buckets as a share of all registrations.
func (t *Tally) Rows() []TallyRow {
	inRange := t.InRange()
	total := t.Total()
	rows := make([]TallyRow, 0, len(allBuckets))
	for _, bucket := range allBuckets {
		row := TallyRow{Bucket: bucket, Count: t.counts[bucket]}
		switch {
		case bucket.InRange():
			row.Of = "US publications"
			row.Percent = percent(row.Count, inRange)
		case bucket == BucketForeign:
			row.Of = "foreign and US publications"
			row.Percent = percent(row.Count, inRange+row.Count)
		default:
			row.Of = "registrations"
			row.Percent = percent(row.Count, total)
		}
		rows = append(rows, row)
	}
	return rows
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}
