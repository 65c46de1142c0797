package crawl

import (
	"sync"

	"github.com/fwojciec/adcrawl"
)

var _ adcrawl.EventSink = (*EventQueue)(nil)

// EventQueue is an unbounded FIFO of crawl events with one producer and one
// consumer. Emit never blocks; Poll and Drain never wait.
type EventQueue struct {
	mu    sync.Mutex
	items []adcrawl.Event
	ready chan struct{}
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{ready: make(chan struct{}, 1)}
}

// Emit appends e to the queue.
func (q *EventQueue) Emit(e adcrawl.Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Poll removes and returns the oldest event.
// The bool result is false if the queue is empty.
func (q *EventQueue) Poll() (adcrawl.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return adcrawl.Event{}, false
	}
	e := q.items[0]
	q.items[0] = adcrawl.Event{}
	q.items = q.items[1:]
	return e, true
}

// Drain removes and returns every queued event in order.
func (q *EventQueue) Drain() []adcrawl.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready receives a value after one or more events were emitted.
// Observers may select on it instead of polling on a timer.
func (q *EventQueue) Ready() <-chan struct{} {
	return q.ready
}
