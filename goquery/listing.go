package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adcrawl"
)

// Ensure ListingParser implements adcrawl.ListingParser at compile time.
var _ adcrawl.ListingParser = (*ListingParser)(nil)

// ListingParser reads listing pages.
type ListingParser struct {
	sel adcrawl.Selectors
}

// NewListingParser creates a new ListingParser.
func NewListingParser(sel adcrawl.Selectors) *ListingParser {
	return &ListingParser{sel: sel}
}

// ParseListing copies the posted age, title, price, location, seller and
// vehicle attributes into rec.
func (p *ListingParser) ParseListing(html string, rec *adcrawl.Record) error {
	doc, err := parse(html)
	if err != nil {
		return err
	}
	root := doc.Selection

	if v, ok := first(root, p.sel.Posted); ok {
		rec.Set(adcrawl.FieldPosted, v)
	}
	if v, ok := first(root, p.sel.Name); ok {
		rec.Set(adcrawl.FieldName, v)
	}
	if v, ok := first(root, p.sel.Price); ok {
		rec.Set(adcrawl.FieldPrice, adcrawl.SpreadsheetSafe(v))
	}
	if v, ok := first(root, p.sel.Location); ok {
		rec.Set(adcrawl.FieldLocation, v)
	}
	if v, ok := first(root, p.sel.Seller); ok {
		rec.Set(adcrawl.FieldSeller, v)
	}

	if p.sel.AttributeRows != "" {
		root.Find(p.sel.AttributeRows).Each(func(_ int, row *goquery.Selection) {
			paragraphs := row.Find("p")
			if paragraphs.Length() == 0 {
				return
			}
			label := text(paragraphs.First())
			var values []string
			paragraphs.Slice(1, paragraphs.Length()).Each(func(_ int, v *goquery.Selection) {
				values = append(values, text(v))
			})
			setAttribute(rec, label, values)
		})
	}
	return nil
}

// ParsePhone returns the revealed phone number.
func (p *ListingParser) ParsePhone(html string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}
	if v, ok := first(doc.Selection, p.sel.PhoneLink); ok && v != "" {
		return adcrawl.SpreadsheetSafe(v), true
	}
	for _, c := range p.sel.PhoneText {
		if s := find(doc.Selection, c); s.Length() > 0 {
			if v := text(s); v != "" {
				return adcrawl.SpreadsheetSafe(v), true
			}
		}
	}
	return "", false
}

func setAttribute(rec *adcrawl.Record, label string, values []string) {
	set := func(f adcrawl.Field, v string) {
		rec.Set(f, adcrawl.SpreadsheetSafe(v))
	}
	all := strings.Join(values, ", ")

	switch label {
	case "Seats":
		set(adcrawl.FieldSeats, all)
	case "Kilometres":
		set(adcrawl.FieldKilometres, all)
	case "Transmission":
		set(adcrawl.FieldTransmission, all)
	case "Fuel":
		set(adcrawl.FieldFuel, all)
	case "Body Style":
		if len(values) > 0 {
			set(adcrawl.FieldBodyStyle, values[0])
		}
		if len(values) > 1 {
			set(adcrawl.FieldDoors, values[1])
		}
	case "Model":
		if len(values) > 0 {
			set(adcrawl.FieldModel, values[0])
		}
		if len(values) > 1 {
			set(adcrawl.FieldExtraInfo, strings.Join(values[1:], ", "))
		}
	}
}
