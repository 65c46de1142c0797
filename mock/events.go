package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/adcrawl"
)

var (
	_ adcrawl.EventSink      = (*EventSink)(nil)
	_ adcrawl.EventSink      = (*EventRecorder)(nil)
	_ adcrawl.StopFlag       = (*StopFlag)(nil)
	_ adcrawl.RequestLimiter = (*RequestLimiter)(nil)
)

// EventSink is a mock implementation of adcrawl.EventSink.
type EventSink struct {
	EmitFn func(e adcrawl.Event)
}

func (s *EventSink) Emit(e adcrawl.Event) {
	s.EmitFn(e)
}

// EventRecorder is an adcrawl.EventSink that keeps every event it receives.
type EventRecorder struct {
	mu     sync.Mutex
	events []adcrawl.Event
}

func (r *EventRecorder) Emit(e adcrawl.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []adcrawl.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]adcrawl.Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *EventRecorder) OfType(t adcrawl.EventType) []adcrawl.Event {
	var out []adcrawl.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the messages of the recorded log events.
func (r *EventRecorder) Messages() []string {
	var out []string
	for _, e := range r.OfType(adcrawl.EventLog) {
		out = append(out, e.Message)
	}
	return out
}

// StopFlag is a mock implementation of adcrawl.StopFlag.
type StopFlag struct {
	StoppedFn func() bool
}

func (f *StopFlag) Stopped() bool {
	return f.StoppedFn()
}

// RequestLimiter is a mock implementation of adcrawl.RequestLimiter.
type RequestLimiter struct {
	WaitFn func(ctx context.Context, kind adcrawl.RequestKind, rawURL string) error
}

func (l *RequestLimiter) Wait(ctx context.Context, kind adcrawl.RequestKind, rawURL string) error {
	return l.WaitFn(ctx, kind, rawURL)
}
