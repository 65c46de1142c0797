package adcrawl

import "context"

// Session is an isolated browsing context. Cookies and storage are shared
// by pages of one session and by nothing else.
type Session interface {
	// NewPage opens a new tab in the session.
	NewPage(ctx context.Context) (Page, error)

	// Close releases the session and every resource it launched.
	// Close is safe to call multiple times.
	Close() error
}

// Page is a single tab of a Session.
// Blocking methods honor the context deadline; an expired deadline is
// reported as a timeout (see IsTimeout).
type Page interface {
	// Navigate loads url, sending referer when it is not empty, and returns
	// once the DOM content has loaded.
	Navigate(ctx context.Context, url, referer string) error

	// WaitElement blocks until an element matching selector exists.
	WaitElement(ctx context.Context, selector string) error

	// Click scrolls the first element matching c into view and clicks it.
	// The bool result is false when nothing matches.
	Click(ctx context.Context, c Control) (bool, error)

	// HTML returns a snapshot of the current document.
	HTML(ctx context.Context) (string, error)

	// Close closes the tab.
	Close() error
}

// RequestKind tells result page navigations from listing visits.
type RequestKind int

const (
	RequestResults RequestKind = iota
	RequestListing
)

func (k RequestKind) String() string {
	switch k {
	case RequestResults:
		return "results"
	case RequestListing:
		return "listing"
	default:
		return "unknown"
	}
}

// RequestLimiter paces navigations to a site.
type RequestLimiter interface {
	// Wait blocks until a navigation of the given kind to rawURL is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, kind RequestKind, rawURL string) error
}
