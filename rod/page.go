package rod

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Page implements adcrawl.Page at compile time.
var _ adcrawl.Page = (*Page)(nil)

// Page is a Chrome tab opened by a Session.
type Page struct {
	page              *rod.Page
	navigationTimeout time.Duration
	actionTimeout     time.Duration
	release           func()
}

// Navigate loads url and waits for DOMContentLoaded.
func (p *Page) Navigate(ctx context.Context, url, referer string) error {
	ctx, cancel := context.WithTimeout(ctx, p.navigationTimeout)
	defer cancel()

	if referer != "" {
		restore, err := p.page.SetExtraHeaders([]string{"Referer", referer})
		if err != nil {
			return fmt.Errorf("setting referer: %w", err)
		}
		defer restore()
	}

	page := p.page.Context(ctx)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return classify(err)
	}
	wait()

	return classify(ctx.Err())
}

// WaitElement blocks until selector matches.
func (p *Page) WaitElement(ctx context.Context, selector string) error {
	ctx, cancel := context.WithTimeout(ctx, p.actionTimeout)
	defer cancel()

	_, err := p.page.Context(ctx).Element(selector)
	return classify(err)
}

// Click scrolls the first element matching c into view and clicks it.
func (p *Page) Click(ctx context.Context, c adcrawl.Control) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.actionTimeout)
	defer cancel()

	page := p.page.Context(ctx)
	var (
		has bool
		el  *rod.Element
		err error
	)
	if c.Text == "" {
		has, el, err = page.Has(c.Selector)
	} else {
		has, el, err = page.HasR(c.Selector, TextPattern(c.Text))
	}
	if err != nil || !has {
		return false, classify(err)
	}

	// Scrolling is best effort; Click scrolls again if it must.
	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, classify(err)
	}
	return true, nil
}

// HTML returns the current document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.actionTimeout)
	defer cancel()

	html, err := p.page.Context(ctx).HTML()
	return html, classify(err)
}

// Close closes the tab.
func (p *Page) Close() error {
	err := p.page.Close()
	if p.release != nil {
		p.release()
		p.release = nil
	}
	return err
}

// TextPattern returns a case-insensitive JavaScript regular expression
// matching text literally.
func TextPattern(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}

// classify reports navigation timeouts as ETIMEOUT errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var nav *rod.NavigationError
	if errors.As(err, &nav) && strings.Contains(nav.Reason, "TIMED_OUT") {
		return adcrawl.Errorf(adcrawl.ETIMEOUT, "%s", nav.Error())
	}
	return err
}
