// Package fs provides file-based storage for listing records.
package fs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/adcrawl"
)

// Ensure RecordStore implements adcrawl.RecordStore at compile time.
var _ adcrawl.RecordStore = (*RecordStore)(nil)

// RecordStore writes records to a single UTF-8 CSV file.
// The first write of a run truncates the file and writes the header; later
// writes append rows, so rows persisted before a failure stay readable.
type RecordStore struct {
	path string

	mu     sync.Mutex
	header []string
}

// NewRecordStore returns a store writing to path.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Header returns the header written by the first write, or nil before it.
func (s *RecordStore) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// Reset removes the destination file, if any, and forgets the header.
func (s *RecordStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.header = nil
	return nil
}

// Write persists recs.
func (s *RecordStore) Write(ctx context.Context, recs []*adcrawl.Record) error {
	if len(recs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	first := s.header == nil
	flag := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if first {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return err
		}
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(s.path, flag, 0644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := s.header
	if first {
		header = adcrawl.Header()
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
	}
	for _, rec := range recs {
		if err := w.Write(rec.Row()); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", rec.Get(adcrawl.FieldLink), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.header = header
	return nil
}
