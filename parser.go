package adcrawl

// Summary is one entry of a result page.
type Summary struct {
	// Link is the absolute URL of the listing page.
	Link string

	// Posted is the relative age label, e.g. "3 hrs ago".
	Posted string
}

// ResultParser reads result pages.
type ResultParser interface {
	// ParseResults returns the entries of a result page in document order.
	// Relative links are resolved against pageURL.
	ParseResults(html, pageURL string) ([]Summary, error)

	// ParseNextPage returns the absolute URL of the next result page.
	// Returns ENOTFOUND when the page has no next control.
	ParseNextPage(html, pageURL string) (string, error)
}

// ListingParser reads listing pages.
type ListingParser interface {
	// ParseListing copies every field it can find into rec.
	// Fields it cannot find are left untouched.
	ParseListing(html string, rec *Record) error

	// ParsePhone returns the revealed phone number, if any.
	ParsePhone(html string) (string, bool)
}
