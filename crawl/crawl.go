// Package crawl provides the crawl engine: pacing and retries, the
// pagination state machine, listing extraction, buffered persistence, and
// the event queue that reports progress to an observer.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/google/uuid"
)

// SessionFunc opens a browsing session for one run.
type SessionFunc func(ctx context.Context) (adcrawl.Session, error)

// StoreFunc returns the record store for a destination path.
type StoreFunc func(path string) adcrawl.RecordStore

// Crawler runs crawls. A Crawler may run many crawls, one at a time or
// concurrently; all per-run state lives in the run.
type Crawler struct {
	Sessions   SessionFunc
	Stores     StoreFunc
	Walker     *Walker
	FlushEvery int

	// Now stamps events. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a crawl.
type Result struct {
	RunID   string
	Total   int
	Stopped bool
	Err     error
}

// Run executes one crawl and returns only after its terminal event was
// emitted. Output of a previous run at the same destination is removed
// first, the session is always closed, and pending records are flushed
// before the terminal event. Run never panics.
func (c *Crawler) Run(ctx context.Context, run *adcrawl.Run) Result {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	events := &runEvents{id: run.ID, next: run.Events, now: c.now}
	if run.Events == nil {
		events.next = discard{}
	}

	if err := run.Validate(); err != nil {
		events.Emit(adcrawl.ErrorEvent(err, ""))
		return Result{RunID: run.ID, Err: err}
	}

	store := c.Stores(run.Destination)
	buffer := NewBuffer(store, events, c.FlushEvery)

	trace, err := c.execute(ctx, run, store, buffer, events)
	return c.finish(ctx, run, buffer, events, trace, err)
}

func (c *Crawler) execute(ctx context.Context, run *adcrawl.Run, store adcrawl.RecordStore, buffer *Buffer, events adcrawl.EventSink) (trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			trace = string(debug.Stack())
		}
	}()

	if err := store.Reset(ctx); err != nil {
		return "", fmt.Errorf("removing previous output: %w", err)
	}

	session, err := c.Sessions(ctx)
	if err != nil {
		return "", fmt.Errorf("starting session: %w", err)
	}
	defer session.Close()

	return "", c.Walker.Walk(ctx, run, session, buffer, events)
}

func (c *Crawler) finish(ctx context.Context, run *adcrawl.Run, buffer *Buffer, events adcrawl.EventSink, trace string, err error) Result {
	stopped := run.Stopped()
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// A canceled context is a forced stop, not a failure.
		err = nil
		stopped = true
	}

	flushCtx := context.WithoutCancel(ctx)
	if flushErr := buffer.Flush(flushCtx, true); flushErr != nil && err == nil {
		err = fmt.Errorf("writing records: %w", flushErr)
	}

	res := Result{RunID: run.ID, Total: buffer.Total(), Stopped: stopped}
	if err != nil {
		if trace == "" {
			trace = fmt.Sprintf("%v\n\n%s", err, debug.Stack())
		}
		events.Emit(adcrawl.ErrorEvent(err, trace))
		res.Err = err
		return res
	}

	events.Emit(adcrawl.DoneEvent(res.Total, stopped))
	return res
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// runEvents stamps events with the run ID and time.
type runEvents struct {
	id   string
	next adcrawl.EventSink
	now  func() time.Time
}

func (e *runEvents) Emit(ev adcrawl.Event) {
	ev.RunID = e.id
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}
	e.next.Emit(ev)
}

type discard struct{}

func (discard) Emit(adcrawl.Event) {}
