package mock

import "github.com/fwojciec/adcrawl"

var (
	_ adcrawl.ResultParser  = (*ResultParser)(nil)
	_ adcrawl.ListingParser = (*ListingParser)(nil)
)

// ResultParser is a mock implementation of adcrawl.ResultParser.
type ResultParser struct {
	ParseResultsFn  func(html, pageURL string) ([]adcrawl.Summary, error)
	ParseNextPageFn func(html, pageURL string) (string, error)
}

func (p *ResultParser) ParseResults(html, pageURL string) ([]adcrawl.Summary, error) {
	return p.ParseResultsFn(html, pageURL)
}

func (p *ResultParser) ParseNextPage(html, pageURL string) (string, error) {
	return p.ParseNextPageFn(html, pageURL)
}

// ListingParser is a mock implementation of adcrawl.ListingParser.
type ListingParser struct {
	ParseListingFn func(html string, rec *adcrawl.Record) error
	ParsePhoneFn   func(html string) (string, bool)
}

func (p *ListingParser) ParseListing(html string, rec *adcrawl.Record) error {
	return p.ParseListingFn(html, rec)
}

func (p *ListingParser) ParsePhone(html string) (string, bool) {
	return p.ParsePhoneFn(html)
}
