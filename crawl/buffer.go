package crawl

import (
	"context"

	"github.com/fwojciec/adcrawl"
)

// DefaultFlushEvery is the number of pending records that triggers a write.
const DefaultFlushEvery = 10

// Buffer accumulates records and writes them to a store in batches.
// Total counts only rows the store accepted. Buffer is owned by a single
// crawl worker and is not safe for concurrent use.
type Buffer struct {
	store     adcrawl.RecordStore
	events    adcrawl.EventSink
	threshold int
	pending   []*adcrawl.Record
	total     int

	// failed is the first write error. A partial write may have reached
	// the store, so the batch is never written again.
	failed error
}

// NewBuffer returns a Buffer that writes once threshold records are pending.
// A threshold below one uses DefaultFlushEvery.
func NewBuffer(store adcrawl.RecordStore, events adcrawl.EventSink, threshold int) *Buffer {
	if threshold < 1 {
		threshold = DefaultFlushEvery
	}
	return &Buffer{
		store:     store,
		events:    events,
		threshold: threshold,
	}
}

// Append adds a copy of rec to the pending batch.
func (b *Buffer) Append(rec *adcrawl.Record) {
	b.pending = append(b.pending, rec.Clone())
}

// FlushIfDue writes the pending batch if it has reached the threshold.
func (b *Buffer) FlushIfDue(ctx context.Context) error {
	if len(b.pending) < b.threshold {
		return nil
	}
	return b.Flush(ctx, false)
}

// Flush writes any pending records and emits a flush event with the new
// cumulative total. After a failed write every later Flush returns the
// same error without touching the store.
func (b *Buffer) Flush(ctx context.Context, final bool) error {
	if b.failed != nil {
		return b.failed
	}
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.store.Write(ctx, b.pending); err != nil {
		b.failed = err
		return err
	}
	b.total += len(b.pending)
	b.pending = nil
	b.events.Emit(adcrawl.FlushEvent(b.total, final))
	return nil
}

// Total returns the number of rows persisted so far.
func (b *Buffer) Total() int { return b.total }

// Err returns the write error that halted the buffer, if any.
func (b *Buffer) Err() error { return b.failed }

// Pending returns the number of records not yet persisted.
func (b *Buffer) Pending() int { return len(b.pending) }
