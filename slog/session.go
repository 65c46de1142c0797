// Package slog provides structured logging decorators for the browsing
// session and the record store.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adcrawl"
)

// Ensure LoggingSession implements adcrawl.Session.
var _ adcrawl.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with debug logging. Pages it opens are
// wrapped in LoggingPage.
type LoggingSession struct {
	next   adcrawl.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next adcrawl.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// NewPage delegates to the wrapped session and logs the operation.
func (s *LoggingSession) NewPage(ctx context.Context) (page adcrawl.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("new page",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	page, err = s.next.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return NewLoggingPage(page, s.logger), nil
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	err := s.next.Close()
	s.logger.Debug("session closed", "err", err)
	return err
}

// Ensure LoggingPage implements adcrawl.Page.
var _ adcrawl.Page = (*LoggingPage)(nil)

// LoggingPage wraps a Page with logging.
type LoggingPage struct {
	next   adcrawl.Page
	logger *slog.Logger
}

// NewLoggingPage creates a new LoggingPage.
func NewLoggingPage(next adcrawl.Page, logger *slog.Logger) *LoggingPage {
	return &LoggingPage{next: next, logger: logger}
}

// Navigate logs the URL being loaded and delegates to the wrapped page.
func (p *LoggingPage) Navigate(ctx context.Context, url, referer string) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("navigate",
			"url", url,
			"referer", referer,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Navigate(ctx, url, referer)
}

func (p *LoggingPage) WaitElement(ctx context.Context, selector string) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("wait element",
			"selector", selector,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.WaitElement(ctx, selector)
}

func (p *LoggingPage) Click(ctx context.Context, c adcrawl.Control) (clicked bool, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("click",
			"selector", c.Selector,
			"text", c.Text,
			"clicked", clicked,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Click(ctx, c)
}

func (p *LoggingPage) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("html",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.HTML(ctx)
}

// Close delegates to the wrapped page.
func (p *LoggingPage) Close() error {
	return p.next.Close()
}
