package catalog

import (
	"context"

	"crclear/internal/textutil"
)

// Index is an in-memory Source keyed by title key.
type Index struct {
	normalizer *textutil.Normalizer
	byKey      map[string][]Entry
	size       int
}

// NewIndex returns an empty index that normalizes titles with n.
func NewIndex(n *textutil.Normalizer) *Index {
	return &Index{normalizer: n, byKey: make(map[string][]Entry)}
}

// Add indexes rec and reports whether it had a usable title.
func (i *Index) Add(rec Record) bool {
	entry, ok := NewEntry(i.normalizer, rec)
	if !ok {
		return false
	}
	i.byKey[entry.Key] = append(i.byKey[entry.Key], entry)
	i.size++
	return true
}

// Candidates implements Source.
func (i *Index) Candidates(_ context.Context, key string) ([]Entry, error) {
	return i.byKey[key], nil
}

// Len reports how many records were indexed.
func (i *Index) Len() int {
	return i.size
}

// Keys reports how many distinct title keys the index holds.
func (i *Index) Keys() int {
	return len(i.byKey)
}
