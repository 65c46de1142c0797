package crawl

import (
	"sync/atomic"

	"github.com/fwojciec/adcrawl"
)

var _ adcrawl.StopFlag = (*StopSignal)(nil)

// StopSignal is a one-way cooperative stop request.
// The zero value is ready to use and safe for concurrent use.
type StopSignal struct {
	stopped atomic.Bool
}

// Stop requests the crawl to stop at its next checkpoint.
// Calling Stop more than once has no further effect.
func (s *StopSignal) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (s *StopSignal) Stopped() bool {
	return s.stopped.Load()
}
