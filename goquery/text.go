// Package goquery reads listing and result pages with CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adcrawl"
)

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, adcrawl.Errorf(adcrawl.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// text returns the text of sel with runs of whitespace collapsed.
func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// first returns the text of the first element matching selector.
func first(doc *goquery.Selection, selector string) (string, bool) {
	if selector == "" {
		return "", false
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return text(sel), true
}

// find returns the first element matching c, or an empty selection.
func find(doc *goquery.Selection, c adcrawl.Control) *goquery.Selection {
	sel := doc.Find(c.Selector)
	if c.Text == "" {
		return sel.First()
	}
	want := strings.ToLower(c.Text)
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), want)
	}).First()
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
