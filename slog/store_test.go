package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/mock"
	adslog "github.com/fwojciec/adcrawl/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStore_Write(t *testing.T) {
	t.Parallel()

	t.Run("logs batch size and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var got []*adcrawl.Record
		inner := &mock.RecordStore{
			WriteFn: func(ctx context.Context, records []*adcrawl.Record) error {
				got = records
				return nil
			},
		}

		store := adslog.NewLoggingStore(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		records := []*adcrawl.Record{adcrawl.NewRecord("https://example.com/v/1"), adcrawl.NewRecord("https://example.com/v/2")}
		err := store.Write(context.Background(), records)

		require.NoError(t, err)
		assert.Equal(t, records, got)
		output := buf.String()
		assert.Contains(t, output, "write records")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RecordStore{
			WriteFn: func(ctx context.Context, records []*adcrawl.Record) error {
				return errors.New("disk full")
			},
		}

		store := adslog.NewLoggingStore(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		err := store.Write(context.Background(), nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="disk full"`)
	})
}

func TestLoggingStore_Reset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	called := false
	inner := &mock.RecordStore{
		ResetFn: func(ctx context.Context) error {
			called = true
			return nil
		},
	}

	store := adslog.NewLoggingStore(inner, debugLogger(&buf))

	require.NoError(t, store.Reset(context.Background()))
	assert.True(t, called)
	assert.Contains(t, buf.String(), "reset output")
}
