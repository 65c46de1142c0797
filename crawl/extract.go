package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/adcrawl"
)

// Extractor defaults.
const (
	DefaultListingAttempts   = 3
	DefaultListingBaseDelay  = 1200 * time.Millisecond
	DefaultListingTimeout    = 60 * time.Second
	DefaultRevealWaitTimeout = 5 * time.Second
)

// Extractor visits a single listing page and captures its fields.
type Extractor struct {
	Parser    adcrawl.ListingParser
	Selectors adcrawl.Selectors
	Pacer     *Pacer

	Attempts      int
	BaseDelay     time.Duration
	Timeout       time.Duration
	RevealTimeout time.Duration

	// OpenPause precedes navigation; PhonePause precedes the phone reveal.
	OpenPause  Span
	PhonePause Span
}

// NewExtractor returns an Extractor with default timings.
func NewExtractor(parser adcrawl.ListingParser, selectors adcrawl.Selectors, pacer *Pacer) *Extractor {
	return &Extractor{
		Parser:        parser,
		Selectors:     selectors,
		Pacer:         pacer,
		Attempts:      DefaultListingAttempts,
		BaseDelay:     DefaultListingBaseDelay,
		Timeout:       DefaultListingTimeout,
		RevealTimeout: DefaultRevealWaitTimeout,
		OpenPause:     Span{Min: 300 * time.Millisecond, Max: time.Second},
		PhonePause:    Span{Min: 3 * time.Second, Max: 6 * time.Second},
	}
}

// Extract opens href in a new page of session and returns whatever could be
// captured. Failures never escape: a timeout is reported as
// "Timeout while loading <href>" and anything else as
// "Error scraping <href>: <err>", and the partial record is returned.
func (e *Extractor) Extract(ctx context.Context, session adcrawl.Session, href, referer string, events adcrawl.EventSink) (rec *adcrawl.Record) {
	rec = adcrawl.NewRecord(href)

	page, err := session.NewPage(ctx)
	if err != nil {
		e.report(events, href, err)
		return rec
	}
	defer page.Close()

	defer func() {
		if r := recover(); r != nil {
			e.report(events, href, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := e.visit(ctx, page, href, referer, rec); err != nil {
		e.report(events, href, err)
	}
	return rec
}

func (e *Extractor) visit(ctx context.Context, page adcrawl.Page, href, referer string, rec *adcrawl.Record) error {
	if err := e.Pacer.Pause(ctx, e.OpenPause); err != nil {
		return err
	}

	err := e.Pacer.WithRetry(ctx, e.Attempts, e.BaseDelay, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, e.Timeout)
		defer cancel()
		return page.Navigate(ctx, href, referer)
	})
	if err != nil {
		return err
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return err
	}
	if err := e.Parser.ParseListing(html, rec); err != nil {
		return err
	}

	e.revealPhone(ctx, page, rec)
	return nil
}

// revealPhone clicks the first reveal control present and waits for the
// number to render. Every failure leaves the phone field unchanged.
func (e *Extractor) revealPhone(ctx context.Context, page adcrawl.Page, rec *adcrawl.Record) {
	if err := e.Pacer.Pause(ctx, e.PhonePause); err != nil {
		return
	}

	for _, c := range e.Selectors.RevealControls {
		clicked, err := page.Click(ctx, c)
		if err != nil {
			return
		}
		if !clicked {
			continue
		}
		waitCtx, cancel := context.WithTimeout(ctx, e.RevealTimeout)
		err = page.WaitElement(waitCtx, e.Selectors.PhoneLink)
		cancel()
		if err != nil {
			return
		}
		break
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return
	}
	if phone, ok := e.Parser.ParsePhone(html); ok {
		rec.Set(adcrawl.FieldPhone, phone)
	}
}

func (e *Extractor) report(events adcrawl.EventSink, href string, err error) {
	if adcrawl.IsTimeout(err) {
		events.Emit(adcrawl.LogEvent("Timeout while loading " + href))
		return
	}
	events.Emit(adcrawl.LogEvent(fmt.Sprintf("Error scraping %s: %v", href, err)))
}
