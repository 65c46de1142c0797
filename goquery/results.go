package goquery

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adcrawl"
)

// Ensure ResultParser implements adcrawl.ResultParser at compile time.
var _ adcrawl.ResultParser = (*ResultParser)(nil)

// ResultParser reads result pages.
type ResultParser struct {
	sel adcrawl.Selectors
}

// NewResultParser creates a new ResultParser.
func NewResultParser(sel adcrawl.Selectors) *ResultParser {
	return &ResultParser{sel: sel}
}

// ParseResults returns one summary per result container. Containers without
// a link are included with an empty Link; containers without a posted label
// get adcrawl.Sentinel.
func (p *ResultParser) ParseResults(html, pageURL string) ([]adcrawl.Summary, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, adcrawl.Errorf(adcrawl.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var summaries []adcrawl.Summary
	for _, container := range p.sel.ResultContainers {
		doc.Find(container).Each(func(_ int, s *goquery.Selection) {
			summary := adcrawl.Summary{Posted: adcrawl.Sentinel}
			if posted, ok := first(s, p.sel.ResultPosted); ok {
				summary.Posted = posted
			}
			if href, ok := s.Find(p.sel.ResultLink).First().Attr("href"); ok && href != "" {
				summary.Link = resolveURL(base, href)
			}
			summaries = append(summaries, summary)
		})
	}
	return summaries, nil
}

// ParseNextPage returns the target of the first next-page control.
func (p *ResultParser) ParseNextPage(html, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", adcrawl.Errorf(adcrawl.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := parse(html)
	if err != nil {
		return "", err
	}

	for _, c := range p.sel.NextPage {
		a := find(doc.Selection, c)
		if a.Length() == 0 {
			continue
		}
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return "", adcrawl.Errorf(adcrawl.ENOTFOUND, "next page control has no link")
		}
		if next := resolveURL(base, href); next != "" {
			return next, nil
		}
		return "", adcrawl.Errorf(adcrawl.EINVALID, "invalid next page link %q", href)
	}
	return "", adcrawl.Errorf(adcrawl.ENOTFOUND, "no next page control")
}
