package catalog

import "sort"

// Histogram counts review candidates per rounded quality score.
type Histogram struct {
	counts map[float64]int
	total  int
}

// HistogramBin is one row of a Histogram.
type HistogramBin struct {
	Quality float64
	Count   int
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[float64]int)}
}

// Add counts one candidate.
func (h *Histogram) Add(quality float64) {
	h.counts[RoundQuality(quality)]++
	h.total++
}

// Total returns the number of candidates counted.
func (h *Histogram) Total() int {
	return h.total
}

// Bins lists the counts from the highest quality down.
func (h *Histogram) Bins() []HistogramBin {
	bins := make([]HistogramBin, 0, len(h.counts))
	for q, n := range h.counts {
		bins = append(bins, HistogramBin{Quality: q, Count: n})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Quality > bins[j].Quality })
	return bins
}
