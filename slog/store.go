package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adcrawl"
)

// Ensure LoggingStore implements adcrawl.RecordStore.
var _ adcrawl.RecordStore = (*LoggingStore)(nil)

// LoggingStore wraps a RecordStore with logging.
type LoggingStore struct {
	next   adcrawl.RecordStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next adcrawl.RecordStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

func (s *LoggingStore) Reset(ctx context.Context) (err error) {
	defer func() {
		s.logger.Debug("reset output", "err", err)
	}()
	return s.next.Reset(ctx)
}

// Write delegates to the wrapped store and logs the batch size.
func (s *LoggingStore) Write(ctx context.Context, records []*adcrawl.Record) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("write records",
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Write(ctx, records)
}
