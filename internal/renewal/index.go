package renewal

import (
	"crclear/internal/record"
)

// Index maps a hyphen-stripped registration number to the renewals citing
// it. Renewals keep their load order.
type Index struct {
	byRegnum map[string][]*record.Renewal
	all      []*record.Renewal
}

// NewIndex builds an index over renewals.
func NewIndex(renewals []*record.Renewal) *Index {
	idx := &Index{byRegnum: make(map[string][]*record.Renewal)}
	for _, r := range renewals {
		idx.Add(r)
	}
	return idx
}

// Add indexes one renewal under each of its registration numbers.
func (i *Index) Add(r *record.Renewal) {
	if r == nil {
		return
	}
	if i.byRegnum == nil {
		i.byRegnum = make(map[string][]*record.Renewal)
	}
	i.all = append(i.all, r)
	seen := make(map[string]struct{})
	for _, key := range r.Keys() {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		i.byRegnum[key] = append(i.byRegnum[key], r)
	}
}

// Candidates returns every renewal citing any of regnums, without
// duplicates, in the order the regnums and renewals were seen.
func (i *Index) Candidates(regnums []string) []*record.Renewal {
	var out []*record.Renewal
	seen := make(map[*record.Renewal]struct{})
	for _, regnum := range regnums {
		for _, r := range i.byRegnum[record.RegnumKey(regnum)] {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// Len reports how many renewals were indexed.
func (i *Index) Len() int {
	return len(i.all)
}

// All returns the indexed renewals in load order.
func (i *Index) All() []*record.Renewal {
	return i.all
}
