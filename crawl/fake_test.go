package crawl_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/crawl"
	"github.com/fwojciec/adcrawl/fs"
	"github.com/fwojciec/adcrawl/mock"
)

// quietPacer returns a Pacer that never waits.
func quietPacer() *crawl.Pacer {
	return &crawl.Pacer{
		Sleep: func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
		Float: func() float64 { return 0 },
	}
}

// fakeSite is an in-memory classifieds site. Result pages and listing pages
// are addressed by URL; the "HTML" of a page is its URL, plus a marker once
// the phone number was revealed.
type fakeSite struct {
	mu sync.Mutex

	results map[string][]adcrawl.Summary
	next    map[string]string

	// hasReveal and phoneAppears control the phone flow of every listing.
	hasReveal    bool
	phoneAppears bool

	// navigateErr, if set, fails navigations.
	navigateErr func(url string) error

	// onListing is called after a listing page was parsed.
	onListing func(n int, url string)

	navigations    []string
	referers       map[string]string
	listings       int
	pagesOpened    int
	pagesClosed    int
	sessionsClosed int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		results:  make(map[string][]adcrawl.Summary),
		next:     make(map[string]string),
		referers: make(map[string]string),
	}
}

// addPage registers a result page with n recent listings.
func (s *fakeSite) addPage(pageURL string, n int, next string) {
	for i := 1; i <= n; i++ {
		s.results[pageURL] = append(s.results[pageURL], adcrawl.Summary{
			Link:   fmt.Sprintf("%s/listing-%d", strings.TrimSuffix(pageURL, "/"), i),
			Posted: "3 hrs ago",
		})
	}
	if next != "" {
		s.next[pageURL] = next
	}
}

func (s *fakeSite) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

func (s *fakeSite) session() *mock.Session {
	return &mock.Session{
		NewPageFn: func(ctx context.Context) (adcrawl.Page, error) {
			s.mu.Lock()
			s.pagesOpened++
			s.mu.Unlock()
			return s.page(), nil
		},
		CloseFn: func() error {
			s.mu.Lock()
			s.sessionsClosed++
			s.mu.Unlock()
			return nil
		},
	}
}

func (s *fakeSite) page() *mock.Page {
	var current string
	var revealed, clicked bool
	return &mock.Page{
		NavigateFn: func(ctx context.Context, url, referer string) error {
			s.mu.Lock()
			s.navigations = append(s.navigations, url)
			s.referers[url] = referer
			fail := s.navigateErr
			s.mu.Unlock()
			if fail != nil {
				if err := fail(url); err != nil {
					return err
				}
			}
			current = url
			return nil
		},
		WaitElementFn: func(ctx context.Context, selector string) error {
			if selector == adcrawl.DefaultSelectors().PhoneLink {
				if clicked && s.phoneAppears {
					revealed = true
					return nil
				}
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		},
		ClickFn: func(ctx context.Context, c adcrawl.Control) (bool, error) {
			if !s.hasReveal || c.Text != "Reveal" {
				return false, nil
			}
			clicked = true
			return true, nil
		},
		HTMLFn: func(ctx context.Context) (string, error) {
			if revealed {
				return current + "|revealed", nil
			}
			return current, nil
		},
		CloseFn: func() error {
			s.mu.Lock()
			s.pagesClosed++
			s.mu.Unlock()
			return nil
		},
	}
}

func (s *fakeSite) resultParser() *mock.ResultParser {
	return &mock.ResultParser{
		ParseResultsFn: func(html, pageURL string) ([]adcrawl.Summary, error) {
			return s.results[pageURL], nil
		},
		ParseNextPageFn: func(html, pageURL string) (string, error) {
			next, ok := s.next[pageURL]
			if !ok {
				return "", adcrawl.Errorf(adcrawl.ENOTFOUND, "no next page")
			}
			return next, nil
		},
	}
}

func (s *fakeSite) listingParser() *mock.ListingParser {
	return &mock.ListingParser{
		ParseListingFn: func(html string, rec *adcrawl.Record) error {
			rec.Set(adcrawl.FieldName, "Listing "+html)
			rec.Set(adcrawl.FieldPosted, "3 hrs ago")
			s.mu.Lock()
			s.listings++
			n := s.listings
			hook := s.onListing
			s.mu.Unlock()
			if hook != nil {
				hook(n, html)
			}
			return nil
		},
		ParsePhoneFn: func(html string) (string, bool) {
			if strings.HasSuffix(html, "|revealed") {
				return adcrawl.SpreadsheetSafe("+1-416-555-0100"), true
			}
			return "", false
		},
	}
}

// newCrawler wires a crawler against the fake site with real CSV output.
func newCrawler(s *fakeSite, flushEvery int) *crawl.Crawler {
	pacer := quietPacer()
	sel := adcrawl.DefaultSelectors()

	extractor := crawl.NewExtractor(s.listingParser(), sel, pacer)
	extractor.RevealTimeout = 10 * time.Millisecond

	walker := crawl.NewWalker(s.resultParser(), sel, extractor, pacer)

	return &crawl.Crawler{
		Sessions: func(ctx context.Context) (adcrawl.Session, error) {
			return s.session(), nil
		},
		Stores: func(path string) adcrawl.RecordStore {
			return fs.NewRecordStore(path)
		},
		Walker:     walker,
		FlushEvery: flushEvery,
	}
}
