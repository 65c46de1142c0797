package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/adcrawl"
)

// MaxJitter is the upper bound of the random delay added to every backoff.
const MaxJitter = 800 * time.Millisecond

// Span is an inclusive range of durations.
type Span struct {
	Min time.Duration
	Max time.Duration
}

// Pacer spaces out browser actions with randomized pauses and retries
// timeout-class failures with exponential backoff.
type Pacer struct {
	// Sleep blocks for d or until ctx is done. Tests replace it to avoid
	// real waits.
	Sleep func(ctx context.Context, d time.Duration) error

	// Float returns a pseudo-random number in [0, 1).
	Float func() float64

	// OnRetry, if set, is called before each wait between attempts.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewPacer returns a Pacer that really sleeps.
func NewPacer() *Pacer {
	return &Pacer{
		Sleep: sleep,
		Float: rand.Float64,
	}
}

// Backoff returns the wait before retry number attempt (zero based):
// base * 2^attempt plus a jitter in [0, MaxJitter].
func (p *Pacer) Backoff(base time.Duration, attempt int) time.Duration {
	return base<<attempt + p.between(0, MaxJitter)
}

// WithRetry calls action up to attempts times. Only timeout-class failures
// (see adcrawl.IsTimeout) are retried; any other failure is returned
// immediately. When every attempt times out the last failure is returned.
func (p *Pacer) WithRetry(ctx context.Context, attempts int, base time.Duration, action func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := action(ctx)
		if err == nil {
			return nil
		}
		if !adcrawl.IsTimeout(err) {
			return err
		}
		lastErr = err

		// Don't wait after the last attempt
		if attempt >= attempts-1 {
			break
		}

		delay := p.Backoff(base, attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if err := p.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// HumanPause sleeps for a uniformly random duration in [min, max].
func (p *Pacer) HumanPause(ctx context.Context, min, max time.Duration) error {
	return p.Sleep(ctx, p.between(min, max))
}

// Pause is HumanPause over a Span.
func (p *Pacer) Pause(ctx context.Context, s Span) error {
	return p.HumanPause(ctx, s.Min, s.Max)
}

func (p *Pacer) between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(p.Float()*float64(max-min))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
