// Package adcrawl crawls paginated classifieds result pages, visits each
// recent listing, and writes one row per listing to a flat CSV file while
// reporting progress as a stream of events.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, bloom/).
package adcrawl
