package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/adcrawl/bloom"
)

// Frontier sizing for one run. A run visits at most a few thousand listings.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.001
)

// Frontier is a FIFO queue of listing links with Bloom filter
// deduplication. A link is accepted at most once per Frontier, so a listing
// that is bumped onto a later result page is not visited twice.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewFilter(n, fpRate)}
}

// Push adds a link, without its fragment, to the back of the queue.
// Returns false if the listing behind it has already been seen.
func (f *Frontier) Push(link string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestAndAdd(link) {
		return false
	}
	f.queue = append(f.queue, stripFragment(link))
	return true
}

// Pop removes the link at the front of the queue.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	link := f.queue[0]
	f.queue = f.queue[1:]
	return link, true
}

// Len returns the number of links in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the link has been queued before.
func (f *Frontier) Seen(link string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(link)
}

func stripFragment(link string) string {
	if idx := strings.Index(link, "#"); idx != -1 {
		return link[:idx]
	}
	return link
}
