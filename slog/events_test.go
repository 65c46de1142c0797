package slog_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/mock"
	adslog "github.com/fwojciec/adcrawl/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogger_Emit(t *testing.T) {
	t.Parallel()

	t.Run("forwards every event", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rec := &mock.EventRecorder{}
		l := adslog.NewEventLogger(rec, debugLogger(&buf))

		l.Emit(adcrawl.LogEvent("Found 3 listings on this page"))
		l.Emit(adcrawl.FlushEvent(10, false))
		l.Emit(adcrawl.DoneEvent(12, true))

		events := rec.Events()
		require.Len(t, events, 3)
		assert.Equal(t, adcrawl.EventLog, events[0].Type)
		assert.Equal(t, adcrawl.EventFlush, events[1].Type)
		assert.Equal(t, adcrawl.EventDone, events[2].Type)
	})

	t.Run("logs done with total and stop flag", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := adslog.NewEventLogger(&mock.EventRecorder{}, debugLogger(&buf))

		e := adcrawl.DoneEvent(12, true)
		e.RunID = "run-1"
		l.Emit(e)

		output := buf.String()
		assert.Contains(t, output, "crawl finished")
		assert.Contains(t, output, "run=run-1")
		assert.Contains(t, output, "total=12")
		assert.Contains(t, output, "stopped=true")
	})

	t.Run("logs errors at error level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := adslog.NewEventLogger(&mock.EventRecorder{}, debugLogger(&buf))

		l.Emit(adcrawl.ErrorEvent(errors.New("session crashed"), "trace"))

		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, `err="session crashed"`)
	})
}
