package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/crawl"
	adfs "github.com/fwojciec/adcrawl/fs"
	"github.com/fwojciec/adcrawl/goquery"
	adhttp "github.com/fwojciec/adcrawl/http"
	"github.com/fwojciec/adcrawl/rod"
	adslog "github.com/fwojciec/adcrawl/slog"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMain()

	// The first interrupt asks the crawl to stop at its next checkpoint and
	// flush. The second aborts in-flight work.
	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		fmt.Fprintln(os.Stderr, "Stopping after the current listing. Interrupt again to abort.")
		m.Stop.Stop()
		<-interrupts
		cancel()
	}()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded into the environment before flags are parsed.
	// A missing file is ignored.
	EnvFile string

	// Stop is the cooperative stop request shared with the crawl.
	Stop *crawl.StopSignal

	// Sessions overrides the session chosen by --engine. Used by tests.
	Sessions crawl.SessionFunc

	// Pacer overrides the real pacer. Used by tests.
	Pacer *crawl.Pacer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile: ".env",
		Stop:    &crawl.StopSignal{},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := loadEnv(m.EnvFile); err != nil {
		return err
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("adcrawl"),
		kong.Description("Crawl recent private car listings into a CSV file"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{
			"start_url":   adcrawl.DefaultStartURL,
			"max_pages":   fmt.Sprint(adcrawl.DefaultMaxPages),
			"output":      adcrawl.DefaultDestination,
			"flush_every": fmt.Sprint(crawl.DefaultFlushEvery),
			"recency":     strings.Join(crawl.DefaultRecencyUnits(), ","),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" || arg == "help" {
			_, _ = parser.Parse([]string{"--help"})
			return nil
		}
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: newLogger(stderr, cli.Verbose, cli.LogJSON),
		Stop:   m.Stop,
	}
	if deps.Stop == nil {
		deps.Stop = &crawl.StopSignal{}
	}
	deps.Crawler = m.crawler(cli, deps.Logger)

	return cli.Run(deps)
}

// crawler wires the crawl engine for the parsed flags.
func (m *Main) crawler(cli *CLI, logger *slog.Logger) *crawl.Crawler {
	sel := adcrawl.DefaultSelectors()

	pacer := m.Pacer
	if pacer == nil {
		pacer = crawl.NewPacer()
	}
	pacer.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying", "attempt", attempt, "delay", delay, "err", err)
	}

	extractor := crawl.NewExtractor(goquery.NewListingParser(sel), sel, pacer)
	walker := crawl.NewWalker(goquery.NewResultParser(sel), sel, extractor, pacer)
	walker.RecencyUnits = cli.Recency
	if cli.ResultsRPS > 0 || cli.ListingRPS > 0 {
		walker.Limiter = crawl.NewRequestLimiter(cli.ResultsRPS, cli.ListingRPS)
	}
	walker.OnState = func(from, to crawl.State, c crawl.Cursor) {
		logger.Debug("state", "from", from, "to", to, "page", c.Index, "url", c.URL)
	}

	sessions := m.Sessions
	if sessions == nil {
		sessions = cli.sessions()
	}

	return &crawl.Crawler{
		Sessions: func(ctx context.Context) (adcrawl.Session, error) {
			s, err := sessions(ctx)
			if err != nil {
				return nil, err
			}
			return adslog.NewLoggingSession(s, logger), nil
		},
		Stores: func(path string) adcrawl.RecordStore {
			return adslog.NewLoggingStore(adfs.NewRecordStore(path), logger)
		},
		Walker:     walker,
		FlushEvery: cli.FlushEvery,
	}
}

// sessions returns the session factory for --engine.
func (c *CLI) sessions() crawl.SessionFunc {
	if c.Engine == EngineHTTP {
		return func(ctx context.Context) (adcrawl.Session, error) {
			return adhttp.NewSession(), nil
		}
	}
	return func(ctx context.Context) (adcrawl.Session, error) {
		s, err := rod.NewSession(
			rod.WithHeadless(c.Headless),
			rod.WithMaxPages(c.RotateAfter),
		)
		if err != nil {
			return nil, adcrawl.Errorf(adcrawl.EINTERNAL, "failed to start browser (Chrome or Chromium must be installed): %v", err)
		}
		return s, nil
	}
}

// newLogger returns a colored text logger, or a JSON logger when asJSON.
func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
