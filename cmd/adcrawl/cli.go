package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/crawl"
	adslog "github.com/fwojciec/adcrawl/slog"
	"golang.org/x/sync/errgroup"
)

// Engines.
const (
	EngineRod  = "rod"
	EngineHTTP = "http"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Stop    *crawl.StopSignal
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string        `arg:"" optional:"" default:"${start_url}" env:"ADCRAWL_URL" help:"First result page to crawl"`
	MaxPages    int           `short:"p" default:"${max_pages}" env:"ADCRAWL_MAX_PAGES" help:"Maximum result pages to visit (1-200)"`
	Output      string        `short:"o" default:"${output}" env:"ADCRAWL_OUTPUT" help:"CSV file to write; replaced on every run"`
	FlushEvery  int           `default:"${flush_every}" env:"ADCRAWL_FLUSH_EVERY" help:"Rows to buffer before writing"`
	Engine      string        `enum:"rod,http" default:"rod" env:"ADCRAWL_ENGINE" help:"Page engine: rod drives Chrome, http fetches static HTML"`
	Headless    bool          `default:"true" negatable:"" env:"ADCRAWL_HEADLESS" help:"Run Chrome without a window"`
	RotateAfter int           `default:"0" env:"ADCRAWL_ROTATE_AFTER" help:"Start a fresh browser context after this many pages (0 never)"`
	Recency     []string      `default:"${recency}" env:"ADCRAWL_RECENCY" help:"Posted-age tokens of listings to visit; an empty token accepts all"`
	ResultsRPS  float64       `name:"results-rps" default:"0" env:"ADCRAWL_RESULTS_RPS" help:"Result page loads per second per site (0 unlimited)"`
	ListingRPS  float64       `name:"listing-rps" default:"0" env:"ADCRAWL_LISTING_RPS" help:"Listing visits per second per site (0 unlimited)"`
	Refresh     time.Duration `default:"5s" env:"ADCRAWL_REFRESH" help:"How often progress is checked"`
	Verbose     bool          `short:"v" env:"ADCRAWL_VERBOSE" help:"Log every navigation and state change"`
	LogJSON     bool          `name:"log-json" env:"ADCRAWL_LOG_JSON" help:"Log as JSON"`
}

// Run starts the crawl worker and renders its events until the run ends.
func (c *CLI) Run(deps *Dependencies) error {
	queue := crawl.NewEventQueue()
	run := &adcrawl.Run{
		StartURL:    c.URL,
		MaxPages:    c.MaxPages,
		Destination: c.Output,
		Events:      adslog.NewEventLogger(queue, deps.Logger),
		Stop:        deps.Stop,
	}

	obs := &observer{
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		began:   time.Now(),
		refresh: c.Refresh,
		traces:  c.Verbose,
	}
	if obs.refresh <= 0 {
		obs.refresh = 5 * time.Second
	}

	var res crawl.Result

	var g errgroup.Group
	g.Go(func() error {
		res = deps.Crawler.Run(deps.Ctx, run)
		return nil
	})
	g.Go(func() error {
		obs.observe(queue)
		return nil
	})
	_ = g.Wait()

	if res.Err != nil {
		return fmt.Errorf("crawl failed: %w", res.Err)
	}
	return nil
}

// observer renders events for a terminal.
type observer struct {
	stdout  io.Writer
	stderr  io.Writer
	began   time.Time
	refresh time.Duration

	// traces prints the stack trace of a failed run.
	traces bool
}

// observe renders queued events until a terminal event arrives. The queue
// is drained on every tick and whenever it signals new events.
func (o *observer) observe(queue *crawl.EventQueue) {
	ticker := time.NewTicker(o.refresh)
	defer ticker.Stop()

	for {
		for _, e := range queue.Drain() {
			o.render(e)
			if e.Terminal() {
				return
			}
		}
		select {
		case <-ticker.C:
		case <-queue.Ready():
		}
	}
}

func (o *observer) render(e adcrawl.Event) {
	switch e.Type {
	case adcrawl.EventLog:
		fmt.Fprintln(o.stdout, e.Message)
	case adcrawl.EventFlush:
		fmt.Fprintf(o.stdout, "Saved %s\n", crawl.FormatRows(e.Total))
	case adcrawl.EventDone:
		fmt.Fprintln(o.stdout, crawl.FormatSummary(e.Total, time.Since(o.began), e.Stopped))
	case adcrawl.EventError:
		if o.traces && e.Trace != "" {
			fmt.Fprintln(o.stderr, e.Trace)
		}
	}
}
