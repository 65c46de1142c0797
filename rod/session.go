// Package rod provides browsing sessions backed by Chrome through go-rod.
package rod

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Session defaults.
const (
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAcceptLanguage    = "en-CA,en;q=0.9"
	DefaultLocale            = "en-CA"
	DefaultTimezone          = "America/Toronto"
	DefaultNavigationTimeout = 90 * time.Second
	DefaultActionTimeout     = 20 * time.Second
)

// hideWebdriver runs before any page script.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Ensure Session implements adcrawl.Session at compile time.
var _ adcrawl.Session = (*Session)(nil)

// Session is an incognito Chrome browsing context with anti-detection
// settings applied to every page. Images, media and fonts are never
// downloaded.
//
// With WithMaxPages the incognito context is rotated after that many pages,
// giving later pages fresh cookies and a new viewport. A rotated context is
// closed once its last page closes.
//
// Session is safe for concurrent use.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	router   *rod.HijackRouter

	headless          bool
	maxPages          int
	userAgent         string
	navigationTimeout time.Duration
	actionTimeout     time.Duration
	intn              func(n int) int

	mu      sync.Mutex
	current *browserContext
	closed  atomic.Bool
}

// browserContext is one incognito context and its page accounting.
type browserContext struct {
	browser  *rod.Browser
	viewport Viewport
	opened   int
	open     int
}

// Option configures a Session.
type Option func(*Session)

// WithHeadless sets whether Chrome runs without a window. Defaults to true.
func WithHeadless(headless bool) Option {
	return func(s *Session) {
		s.headless = headless
	}
}

// WithMaxPages rotates the incognito context after n pages.
// Zero, the default, never rotates.
func WithMaxPages(n int) Option {
	return func(s *Session) {
		s.maxPages = n
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithTimeouts overrides the default navigation and action timeouts.
func WithTimeouts(navigation, action time.Duration) Option {
	return func(s *Session) {
		s.navigationTimeout = navigation
		s.actionTimeout = action
	}
}

// NewSession launches Chrome and opens an incognito context.
// Close must be called when the Session is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		headless:          true,
		userAgent:         DefaultUserAgent,
		navigationTimeout: DefaultNavigationTimeout,
		actionTimeout:     DefaultActionTimeout,
		intn:              rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.launch(); err != nil {
		return nil, err
	}

	ctx, err := s.newContext()
	if err != nil {
		s.shutdown()
		return nil, err
	}
	s.current = ctx

	return s, nil
}

// launch starts Chrome with stealth and stability flags and installs the
// resource blocking router.
func (s *Session) launch() error {
	lnchr := launcher.New().
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		NoSandbox(true).
		Leakless(true).
		Headless(s.headless)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	router := browser.HijackRequests()
	if err := router.Add("*", "", hijack); err != nil {
		_ = browser.Close()
		lnchr.Kill()
		return fmt.Errorf("installing request router: %w", err)
	}
	go router.Run()

	s.launcher = lnchr
	s.browser = browser
	s.router = router
	return nil
}

func hijack(h *rod.Hijack) {
	if Blocked(h.Request.Type()) {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

// Blocked reports whether requests of type t are aborted.
func Blocked(t proto.NetworkResourceType) bool {
	switch t {
	case proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia, proto.NetworkResourceTypeFont:
		return true
	default:
		return false
	}
}

func (s *Session) newContext() (*browserContext, error) {
	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("creating incognito context: %w", err)
	}
	return &browserContext{
		browser:  incognito,
		viewport: RandomViewport(s.intn),
	}, nil
}

// NewPage opens a tab in the current incognito context.
func (s *Session) NewPage(ctx context.Context) (adcrawl.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, adcrawl.Errorf(adcrawl.EINVALID, "session closed")
	}
	if s.maxPages > 0 && s.current.opened >= s.maxPages {
		s.rotate()
	}

	bc := s.current
	p, err := bc.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	if err := s.setup(p, bc.viewport); err != nil {
		_ = p.Close()
		return nil, err
	}

	bc.opened++
	bc.open++
	return &Page{
		page:              p,
		navigationTimeout: s.navigationTimeout,
		actionTimeout:     s.actionTimeout,
		release:           func() { s.release(bc) },
	}, nil
}

// setup applies identity, locale and stealth settings to a new page.
func (s *Session) setup(p *rod.Page, vp Viewport) error {
	err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.userAgent,
		AcceptLanguage: DefaultAcceptLanguage,
	})
	if err != nil {
		return fmt.Errorf("setting user agent: %w", err)
	}
	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("setting viewport: %w", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: DefaultLocale}).Call(p); err != nil {
		return fmt.Errorf("setting locale: %w", err)
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: DefaultTimezone}).Call(p); err != nil {
		return fmt.Errorf("setting timezone: %w", err)
	}
	if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
		return fmt.Errorf("installing stealth script: %w", err)
	}
	if _, err := p.EvalOnNewDocument(hideWebdriver); err != nil {
		return fmt.Errorf("installing webdriver mask: %w", err)
	}
	return nil
}

// rotate replaces the current context. If the new context cannot be
// created the old one is kept. Must be called with mu held.
func (s *Session) rotate() {
	next, err := s.newContext()
	if err != nil {
		return
	}
	old := s.current
	s.current = next
	if old.open == 0 {
		_ = old.browser.Close()
	}
}

// release accounts for a closed page and closes a rotated-out context
// once it has no open pages.
func (s *Session) release(bc *browserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bc.open--
	if bc != s.current && bc.open == 0 && !s.closed.Load() {
		_ = bc.browser.Close()
	}
}

// Viewport returns the viewport of pages opened now.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.viewport
}

// Close releases browser resources. Close is safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shutdown()
}

// shutdown stops the router and closes the browser and launcher.
func (s *Session) shutdown() error {
	if s.router != nil {
		_ = s.router.Stop()
		s.router = nil
	}
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (s *Session) LauncherPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launcher == nil {
		return 0
	}
	return s.launcher.PID()
}
