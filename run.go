package adcrawl

import (
	"net/url"
	"strings"
)

// Page bounds accepted by Run.Validate.
const (
	MinPages        = 1
	MaxPages        = 200
	DefaultMaxPages = 45
)

// DefaultDestination is the output file used when none is configured.
const DefaultDestination = "kijiji_cars.csv"

// Run holds everything one crawl invocation needs.
type Run struct {
	// ID identifies the run in events and logs. Assigned when empty.
	ID string

	// StartURL is the first result page.
	StartURL string

	// MaxPages is the inclusive bound on result pages visited.
	MaxPages int

	// Destination is the path of the output file.
	Destination string

	// Events receives progress. Required.
	Events EventSink

	// Stop is checked at every checkpoint. Optional.
	Stop StopFlag
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if strings.TrimSpace(r.StartURL) == "" {
		return Errorf(EINVALID, "start URL required")
	}
	u, err := url.Parse(r.StartURL)
	if err != nil {
		return Errorf(EINVALID, "invalid start URL %q: %v", r.StartURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "start URL must use http or https: %q", r.StartURL)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "start URL has no host: %q", r.StartURL)
	}
	if r.MaxPages < MinPages || r.MaxPages > MaxPages {
		return Errorf(EINVALID, "max pages must be between %d and %d, got %d", MinPages, MaxPages, r.MaxPages)
	}
	if strings.TrimSpace(r.Destination) == "" {
		return Errorf(EINVALID, "destination required")
	}
	if r.Events == nil {
		return Errorf(EINVALID, "event sink required")
	}
	return nil
}

// Stopped reports whether a stop has been requested for the run.
func (r *Run) Stopped() bool {
	return r.Stop != nil && r.Stop.Stopped()
}
