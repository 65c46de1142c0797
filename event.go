package adcrawl

import "time"

// EventType identifies the kind of a crawl event.
type EventType int

const (
	EventLog EventType = iota
	EventFlush
	EventDone
	EventError
)

// String returns a lowercase name for the event type.
func (t EventType) String() string {
	switch t {
	case EventLog:
		return "log"
	case EventFlush:
		return "flush"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a progress notification produced by the crawl worker.
// Which fields are meaningful depends on Type.
type Event struct {
	Type  EventType
	RunID string
	Time  time.Time

	// Message is the human-readable text of a log event.
	Message string

	// Total is the cumulative number of persisted rows (flush, done).
	Total int

	// Final marks the end-of-run flush.
	Final bool

	// Stopped is set on a done event when the run ended because a stop
	// was requested rather than because it ran out of pages.
	Stopped bool

	// Err and Trace describe the failure of an error event.
	Err   error
	Trace string
}

// Terminal reports whether no further events follow this one.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// LogEvent returns a log event carrying msg.
func LogEvent(msg string) Event {
	return Event{Type: EventLog, Message: msg}
}

// FlushEvent returns a flush event with the cumulative row total.
func FlushEvent(total int, final bool) Event {
	return Event{Type: EventFlush, Total: total, Final: final}
}

// DoneEvent returns a done event.
func DoneEvent(total int, stopped bool) Event {
	return Event{Type: EventDone, Total: total, Stopped: stopped}
}

// ErrorEvent returns an error event.
func ErrorEvent(err error, trace string) Event {
	return Event{Type: EventError, Err: err, Trace: trace}
}

// EventSink receives crawl events in the order they are produced.
type EventSink interface {
	// Emit delivers an event. It must not block the caller.
	Emit(e Event)
}

// StopFlag is a cooperative cancellation request checked by the crawl
// worker at its checkpoints.
type StopFlag interface {
	Stopped() bool
}
