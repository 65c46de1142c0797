package slog

import (
	"log/slog"

	"github.com/fwojciec/adcrawl"
)

// Ensure EventLogger implements adcrawl.EventSink.
var _ adcrawl.EventSink = (*EventLogger)(nil)

// EventLogger forwards events to next after logging them.
type EventLogger struct {
	next   adcrawl.EventSink
	logger *slog.Logger
}

// NewEventLogger creates a new EventLogger.
func NewEventLogger(next adcrawl.EventSink, logger *slog.Logger) *EventLogger {
	return &EventLogger{next: next, logger: logger}
}

func (l *EventLogger) Emit(e adcrawl.Event) {
	attrs := []any{"run", e.RunID, "type", e.Type.String()}
	switch e.Type {
	case adcrawl.EventLog:
		l.logger.Debug(e.Message, attrs...)
	case adcrawl.EventFlush:
		l.logger.Debug("flush", append(attrs, "total", e.Total, "final", e.Final)...)
	case adcrawl.EventDone:
		l.logger.Info("crawl finished", append(attrs, "total", e.Total, "stopped", e.Stopped)...)
	case adcrawl.EventError:
		l.logger.Error("crawl failed", append(attrs, "err", e.Err)...)
	}
	l.next.Emit(e)
}
