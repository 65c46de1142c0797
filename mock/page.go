package mock

import (
	"context"

	"github.com/fwojciec/adcrawl"
)

var _ adcrawl.Page = (*Page)(nil)

// Page is a mock implementation of adcrawl.Page.
type Page struct {
	NavigateFn    func(ctx context.Context, url, referer string) error
	WaitElementFn func(ctx context.Context, selector string) error
	ClickFn       func(ctx context.Context, c adcrawl.Control) (bool, error)
	HTMLFn        func(ctx context.Context) (string, error)
	CloseFn       func() error
}

func (p *Page) Navigate(ctx context.Context, url, referer string) error {
	return p.NavigateFn(ctx, url, referer)
}

func (p *Page) WaitElement(ctx context.Context, selector string) error {
	return p.WaitElementFn(ctx, selector)
}

func (p *Page) Click(ctx context.Context, c adcrawl.Control) (bool, error) {
	return p.ClickFn(ctx, c)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) Close() error {
	return p.CloseFn()
}
