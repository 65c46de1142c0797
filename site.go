package adcrawl

// DefaultStartURL is the first result page of privately listed cars and
// trucks across Canada.
const DefaultStartURL = "https://www.kijiji.ca/b-cars-trucks/canada/c174l0?for-sale-by=ownr&view=list"

// Control locates an element by CSS selector and, when Text is set, by a
// case-insensitive substring of its visible text.
type Control struct {
	Selector string
	Text     string
}

// Selectors describes where data lives on the pages of a site.
type Selectors struct {
	// ResultsReady matches once a result page has rendered its entries.
	ResultsReady string

	// ResultContainers match one entry each; every selector is queried and
	// the matches are concatenated in order.
	ResultContainers []string

	// ResultPosted and ResultLink are relative to a result container.
	ResultPosted string
	ResultLink   string

	// NextPage controls are tried in order.
	NextPage []Control

	Posted   string
	Name     string
	Price    string
	Location string
	Seller   string

	// RevealControls are tried in order to show the seller's phone number.
	RevealControls []Control

	// PhoneLink matches the revealed phone number.
	PhoneLink string

	// PhoneText is the fallback when no PhoneLink is present.
	PhoneText []Control

	// AttributeRows match label/value rows. The first paragraph of a row
	// is the label and the remaining paragraphs are its values.
	AttributeRows string
}

// DefaultSelectors returns the selectors for Kijiji.
func DefaultSelectors() Selectors {
	return Selectors{
		ResultsReady: "[data-testid='srp-search-list'] section, .vAthl .vAthl div section",
		ResultContainers: []string{
			".vAthl .vAthl div section",
			"[data-testid='srp-search-list'] section",
		},
		ResultPosted: `[data-testid="listing-date"]`,
		ResultLink:   `a[data-testid="listing-link"]`,
		NextPage: []Control{
			{Selector: `li[data-testid="pagination-next-link"] a`},
			{Selector: `nav[aria-label="Search Pagination"] a`, Text: "Next"},
		},
		Posted:   `[data-testid="listing-date"]`,
		Name:     "h1",
		Price:    `p[data-testid="vip-price"]`,
		Location: `[data-testid="seller-profile"] [data-testid*="location"], .bEMmoW .iCgpsX button`,
		Seller:   `h3 a, [data-testid="seller-profile"] h3 a`,
		RevealControls: []Control{
			{Selector: "button", Text: "Reveal"},
			{Selector: "button:has(p[aria-label='Reveal phone number'])"},
		},
		PhoneLink: `a[href^="tel:"]`,
		PhoneText: []Control{
			{Selector: "p", Text: "+1-"},
			{Selector: "p", Text: "+1 "},
		},
		AttributeRows: `div.sc-eb45309b-0.iNzWBi, [data-testid="attributes"] div, [data-testid="attribute-row"]`,
	}
}
