package foreign

import (
	"sort"

	"crclear/internal/record"
)

// Index maps a registration number to the foreign registrations whose notes
// mention it. Entries are only ever added.
type Index struct {
	entries map[string][]record.ParentSnapshot
}

// NewIndex returns an empty propagation index.
func NewIndex() *Index {
	return &Index{entries: make(map[string][]record.ParentSnapshot)}
}

// Add records that xref.Source, a foreign registration, mentions xref.Regnum.
func (i *Index) Add(xref record.CrossReference) {
	key := record.RegnumKey(xref.Regnum)
	if key == "" {
		return
	}
	var source record.ParentSnapshot
	if xref.Source != nil {
		source = *xref.Source
	}
	i.entries[key] = append(i.entries[key], source)
}

// Lookup returns the foreign registrations that mention regnum, oldest first.
func (i *Index) Lookup(regnum string) []record.ParentSnapshot {
	return i.entries[record.RegnumKey(regnum)]
}

// Len reports how many distinct registration numbers are indexed.
func (i *Index) Len() int {
	return len(i.entries)
}

// Regnums lists the indexed registration numbers in sorted order.
func (i *Index) Regnums() []string {
	keys := make([]string, 0, len(i.entries))
	for key := range i.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
