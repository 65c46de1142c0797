package adcrawl

import "context"

// RecordStore persists listing records to a single tabular destination.
type RecordStore interface {
	// Reset removes any output left by a previous run.
	Reset(ctx context.Context) error

	// Write persists recs. The first non-empty write replaces the
	// destination and writes the header; later writes append rows.
	Write(ctx context.Context, recs []*Record) error
}
