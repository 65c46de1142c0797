package crawl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/adcrawl"
)

// Walker defaults.
const (
	DefaultListAttempts  = 2
	DefaultListBaseDelay = 1500 * time.Millisecond
	DefaultListTimeout   = 45 * time.Second
	DefaultReadyTimeout  = 30 * time.Second
)

// DefaultRecencyUnits are the posted-age tokens of listings worth visiting.
func DefaultRecencyUnits() []string {
	return []string{"hrs", "hr", "mins", "min", "seconds", "sec"}
}

// DefaultPageIndexPattern extracts the page number from a result page URL.
var DefaultPageIndexPattern = regexp.MustCompile(`/page-(\d+)/`)

// State is a step of the pagination state machine.
type State int

const (
	StateAwaitListPage State = iota
	StateEnumerateLinks
	StateVisitListings
	StatePaginate
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitListPage:
		return "await-list-page"
	case StateEnumerateLinks:
		return "enumerate-links"
	case StateVisitListings:
		return "visit-listings"
	case StatePaginate:
		return "paginate"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Cursor is the position of a walk.
type Cursor struct {
	// URL of the current result page. Empty once traversal ends.
	URL string

	// Index of the current result page, starting at 1.
	Index int

	// Max is the inclusive bound on Index.
	Max int
}

// Walker drives a crawl through result pages and their listings.
type Walker struct {
	Results   adcrawl.ResultParser
	Selectors adcrawl.Selectors
	Extractor *Extractor
	Pacer     *Pacer

	// Limiter, if set, is waited on before every navigation.
	Limiter adcrawl.RequestLimiter

	// RecencyUnits filters listings by posted-age label. A listing is
	// visited when its label contains any unit. Empty accepts everything.
	RecencyUnits []string

	// PageIndex extracts the page number from the next page URL.
	PageIndex *regexp.Regexp

	ListAttempts  int
	ListBaseDelay time.Duration
	ListTimeout   time.Duration
	ReadyTimeout  time.Duration

	// BetweenListings is the pause after every listing visit.
	BetweenListings Span

	// OnState, if set, is called on every state transition.
	OnState func(from, to State, cursor Cursor)
}

// NewWalker returns a Walker with default timings and filters.
func NewWalker(results adcrawl.ResultParser, selectors adcrawl.Selectors, extractor *Extractor, pacer *Pacer) *Walker {
	return &Walker{
		Results:         results,
		Selectors:       selectors,
		Extractor:       extractor,
		Pacer:           pacer,
		RecencyUnits:    DefaultRecencyUnits(),
		PageIndex:       DefaultPageIndexPattern,
		ListAttempts:    DefaultListAttempts,
		ListBaseDelay:   DefaultListBaseDelay,
		ListTimeout:     DefaultListTimeout,
		ReadyTimeout:    DefaultReadyTimeout,
		BetweenListings: Span{Min: time.Second, Max: 2 * time.Second},
	}
}

// walk is the state of one traversal.
type walk struct {
	*Walker

	run      *adcrawl.Run
	session  adcrawl.Session
	page     adcrawl.Page
	buffer   *Buffer
	events   adcrawl.EventSink
	cursor   Cursor
	frontier *Frontier
	html     string
}

// Walk traverses result pages from run.StartURL until the page bound is
// reached, no next page exists, or a stop is requested. Records are
// appended to buffer as listings are visited. The returned error is
// a run-level failure; per-listing failures are reported as log events.
func (w *Walker) Walk(ctx context.Context, run *adcrawl.Run, session adcrawl.Session, buffer *Buffer, events adcrawl.EventSink) error {
	page, err := session.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("opening result page: %w", err)
	}
	defer page.Close()

	st := &walk{
		Walker:   w,
		run:      run,
		session:  session,
		page:     page,
		buffer:   buffer,
		events:   events,
		cursor:   Cursor{URL: run.StartURL, Index: 1, Max: run.MaxPages},
		frontier: NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
	}

	state := StateAwaitListPage
	for state != StateTerminated {
		next, err := st.step(ctx, state)
		if err != nil {
			return err
		}
		if w.OnState != nil {
			w.OnState(state, next, st.cursor)
		}
		state = next
	}
	return nil
}

func (w *walk) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StateAwaitListPage:
		return w.awaitListPage(ctx)
	case StateEnumerateLinks:
		return w.enumerateLinks()
	case StateVisitListings:
		return w.visitListings(ctx)
	case StatePaginate:
		return w.paginate()
	default:
		return StateTerminated, nil
	}
}

func (w *walk) awaitListPage(ctx context.Context) (State, error) {
	if w.run.Stopped() || w.cursor.URL == "" || w.cursor.Index > w.cursor.Max {
		return StateTerminated, nil
	}

	w.events.Emit(adcrawl.LogEvent(fmt.Sprintf("Scraping Page %d: %s", w.cursor.Index, w.cursor.URL)))

	if err := w.limit(ctx, adcrawl.RequestResults, w.cursor.URL); err != nil {
		return StateTerminated, err
	}

	err := w.Pacer.WithRetry(ctx, w.ListAttempts, w.ListBaseDelay, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, w.ListTimeout)
		defer cancel()
		return w.page.Navigate(ctx, w.cursor.URL, "")
	})
	if err != nil {
		return StateTerminated, fmt.Errorf("loading result page %d: %w", w.cursor.Index, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, w.ReadyTimeout)
	err = w.page.WaitElement(readyCtx, w.Selectors.ResultsReady)
	cancel()
	if err != nil {
		return StateTerminated, fmt.Errorf("waiting for results on page %d: %w", w.cursor.Index, err)
	}

	html, err := w.page.HTML(ctx)
	if err != nil {
		return StateTerminated, fmt.Errorf("reading result page %d: %w", w.cursor.Index, err)
	}
	w.html = html
	return StateEnumerateLinks, nil
}

func (w *walk) enumerateLinks() (State, error) {
	summaries, err := w.Results.ParseResults(w.html, w.cursor.URL)
	if err != nil {
		return StateTerminated, fmt.Errorf("parsing result page %d: %w", w.cursor.Index, err)
	}
	w.events.Emit(adcrawl.LogEvent(fmt.Sprintf("Found %d listings on this page", len(summaries))))

	for _, s := range summaries {
		if s.Link == "" || !w.recent(s.Posted) {
			continue
		}
		if !w.frontier.Push(s.Link) {
			w.events.Emit(adcrawl.LogEvent("Skipping already seen listing: " + s.Link))
		}
	}
	return StateVisitListings, nil
}

func (w *walk) visitListings(ctx context.Context) (State, error) {
	n := w.frontier.Len()
	for i := 1; i <= n; i++ {
		if w.run.Stopped() {
			break
		}
		link, ok := w.frontier.Pop()
		if !ok {
			break
		}

		w.events.Emit(adcrawl.LogEvent(fmt.Sprintf("  • Listing %d/%d", i, n)))
		if err := w.limit(ctx, adcrawl.RequestListing, link); err != nil {
			return StateTerminated, err
		}

		rec := w.Extractor.Extract(ctx, w.session, link, w.run.StartURL, w.events)
		w.buffer.Append(rec)
		if err := w.buffer.FlushIfDue(ctx); err != nil {
			return StateTerminated, fmt.Errorf("writing records: %w", err)
		}

		if err := w.Pacer.Pause(ctx, w.BetweenListings); err != nil {
			return StateTerminated, err
		}
	}
	return StatePaginate, nil
}

func (w *walk) paginate() (State, error) {
	if w.cursor.Index >= w.cursor.Max || w.run.Stopped() {
		return StateTerminated, nil
	}

	next, err := w.Results.ParseNextPage(w.html, w.cursor.URL)
	if err != nil || next == "" {
		w.cursor.URL = ""
		return StateTerminated, nil
	}

	if m := w.PageIndex.FindStringSubmatch(next); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > w.cursor.Max {
			w.cursor.URL = ""
			return StateTerminated, nil
		}
	}

	w.cursor.URL = next
	w.cursor.Index++
	return StateAwaitListPage, nil
}

func (w *walk) recent(posted string) bool {
	if len(w.RecencyUnits) == 0 {
		return true
	}
	for _, unit := range w.RecencyUnits {
		if strings.Contains(posted, unit) {
			return true
		}
	}
	return false
}

func (w *walk) limit(ctx context.Context, kind adcrawl.RequestKind, rawURL string) error {
	if w.Limiter == nil {
		return nil
	}
	return w.Limiter.Wait(ctx, kind, rawURL)
}
