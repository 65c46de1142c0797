package mock

import (
	"context"

	"github.com/fwojciec/adcrawl"
)

var _ adcrawl.RecordStore = (*RecordStore)(nil)

// RecordStore is a mock implementation of adcrawl.RecordStore.
type RecordStore struct {
	ResetFn func(ctx context.Context) error
	WriteFn func(ctx context.Context, recs []*adcrawl.Record) error
}

func (s *RecordStore) Reset(ctx context.Context) error {
	return s.ResetFn(ctx)
}

func (s *RecordStore) Write(ctx context.Context, recs []*adcrawl.Record) error {
	return s.WriteFn(ctx, recs)
}
