package mock

import (
	"context"

	"github.com/fwojciec/adcrawl"
)

var _ adcrawl.Session = (*Session)(nil)

// Session is a mock implementation of adcrawl.Session.
type Session struct {
	NewPageFn func(ctx context.Context) (adcrawl.Page, error)
	CloseFn   func() error
}

func (s *Session) NewPage(ctx context.Context) (adcrawl.Page, error) {
	return s.NewPageFn(ctx)
}

func (s *Session) Close() error {
	return s.CloseFn()
}
