// Package http provides a browsing session over plain HTTP requests for
// result and listing pages that render without JavaScript.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adcrawl"
	"golang.org/x/net/publicsuffix"
)

// Session defaults.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-CA,en;q=0.9"
	DefaultTimeout        = 60 * time.Second
)

// Ensure Session implements adcrawl.Session at compile time.
var _ adcrawl.Session = (*Session)(nil)

// Session opens pages that fetch documents with GET requests. Cookies set
// by the site are kept for the life of the Session, as in a browser
// context. It executes no scripts, so controls can never be clicked.
type Session struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithClient replaces the HTTP client. The client's own timeout is kept.
func WithClient(c *http.Client) Option {
	return func(s *Session) {
		s.client = c
	}
}

// NewSession creates a new HTTP-based Session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		// Options are valid, so cookiejar.New cannot fail.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		s.client = &http.Client{Timeout: s.timeout, Jar: jar}
	}
	return s
}

// NewPage returns an empty page.
func (s *Session) NewPage(ctx context.Context) (adcrawl.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Page{session: s}, nil
}

// Close is a no-op since http.Client doesn't require explicit cleanup.
func (s *Session) Close() error {
	return nil
}

// Ensure Page implements adcrawl.Page at compile time.
var _ adcrawl.Page = (*Page)(nil)

// Page holds the last document fetched through it.
type Page struct {
	session *Session

	mu   sync.Mutex
	html string
	doc  *goquery.Document
}

// Navigate fetches url, sending referer when not empty.
func (p *Page) Navigate(ctx context.Context, url, referer string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return adcrawl.Errorf(adcrawl.EINVALID, "invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", p.session.userAgent)
	req.Header.Set("Accept-Language", DefaultAcceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := p.session.client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return adcrawl.Errorf(adcrawl.ETIMEOUT, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode == http.StatusNotFound:
		return adcrawl.Errorf(adcrawl.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}

	p.mu.Lock()
	p.html = string(body)
	p.doc = doc
	p.mu.Unlock()
	return nil
}

// WaitElement reports whether selector matches the fetched document.
// A static document never changes, so a miss fails immediately.
func (p *Page) WaitElement(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc == nil {
		return adcrawl.Errorf(adcrawl.EINVALID, "no document loaded")
	}
	if p.doc.Find(selector).Length() == 0 {
		return adcrawl.Errorf(adcrawl.ENOTFOUND, "no element matches %q", selector)
	}
	return nil
}

// Click never clicks.
func (p *Page) Click(ctx context.Context, c adcrawl.Control) (bool, error) {
	return false, nil
}

// HTML returns the fetched document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc == nil {
		return "", adcrawl.Errorf(adcrawl.EINVALID, "no document loaded")
	}
	return p.html, nil
}

// Close drops the fetched document.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.html = ""
	p.doc = nil
	return nil
}

// classify reports client timeouts as ETIMEOUT errors.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
		return adcrawl.Errorf(adcrawl.ETIMEOUT, "%v", err)
	}
	return err
}
