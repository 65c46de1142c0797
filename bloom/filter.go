// Package bloom remembers which listings a run has already queued, using
// a Bloom filter keyed by listing identity rather than raw URL.
package bloom

import (
	"net/url"
	"path"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter records listing keys.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected listings
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records the listing behind link.
func (f *Filter) Add(link string) {
	f.f.AddString(Key(link))
}

// Test returns true if the listing behind link might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(link string) bool {
	return f.f.TestString(Key(link))
}

// TestAndAdd records the listing behind link and reports whether it might
// have been recorded before.
func (f *Filter) TestAndAdd(link string) bool {
	return f.f.TestAndAddString(Key(link))
}

// EstimatedCount returns the approximate number of listings recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Key returns the identity of a listing link. Listing URLs end in a numeric
// ad ID that stays fixed when the title slug or query string changes, so
// the host and ID are the key when present. Otherwise the key is the link
// without query and fragment.
func Key(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		if i := strings.IndexAny(link, "?#"); i != -1 {
			return link[:i]
		}
		return link
	}
	host := strings.ToLower(u.Host)
	if id := path.Base(strings.TrimSuffix(u.Path, "/")); numeric(id) {
		return host + "/" + id
	}
	return host + strings.TrimSuffix(u.Path, "/")
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
