package crawl

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/adcrawl"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

var _ adcrawl.RequestLimiter = (*RequestLimiter)(nil)

// RequestLimiter caps navigations per site with token buckets. Result
// pages and listing pages draw from separate buckets, so a slow listing
// ceiling never delays pagination and the reverse. A non-positive rate
// leaves that kind unlimited.
type RequestLimiter struct {
	mu      sync.Mutex
	rates   map[adcrawl.RequestKind]rate.Limit
	buckets map[bucket]*rate.Limiter
}

type bucket struct {
	site string
	kind adcrawl.RequestKind
}

// NewRequestLimiter returns a limiter allowing resultsRPS result page loads
// and listingRPS listing visits per second to each site, each with a burst
// of 1.
func NewRequestLimiter(resultsRPS, listingRPS float64) *RequestLimiter {
	return &RequestLimiter{
		rates: map[adcrawl.RequestKind]rate.Limit{
			adcrawl.RequestResults: rate.Limit(resultsRPS),
			adcrawl.RequestListing: rate.Limit(listingRPS),
		},
		buckets: make(map[bucket]*rate.Limiter),
	}
}

// Wait blocks until the ceiling for kind allows a navigation to rawURL.
func (l *RequestLimiter) Wait(ctx context.Context, kind adcrawl.RequestKind, rawURL string) error {
	r := l.rates[kind]
	if r <= 0 {
		return ctx.Err()
	}

	key := bucket{site: Site(rawURL), kind: kind}
	l.mu.Lock()
	limiter, ok := l.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(r, 1)
		l.buckets[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

// Site returns the registrable domain of rawURL, so www.kijiji.ca and
// kijiji.ca share a budget. IP addresses and hosts without a public suffix
// are returned lowercased as is, without the port.
func Site(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
