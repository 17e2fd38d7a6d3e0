package catalogdb

import (
	"context"

	"crclear/internal/catalog"
)

// Writer buffers entries and inserts them in batches.
type Writer struct {
	store   *Store
	size    int
	pending []catalog.Entry
	written int
}

// NewWriter returns a Writer that flushes every size entries. A size <= 0
// selects DefaultBatchSize.
func (s *Store) NewWriter(size int) *Writer {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Writer{store: s, size: size, pending: make([]catalog.Entry, 0, size)}
}

// Add queues entry, flushing when the batch is full.
func (w *Writer) Add(ctx context.Context, entry catalog.Entry) error {
	w.pending = append(w.pending, entry)
	if len(w.pending) < w.size {
		return nil
	}
	return w.Flush(ctx)
}

// Flush inserts every queued entry.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	if err := w.store.Insert(ctx, w.pending); err != nil {
		return err
	}
	w.written += len(w.pending)
	w.pending = w.pending[:0]
	return nil
}

// Written reports how many entries have been flushed.
func (w *Writer) Written() int {
	return w.written
}
