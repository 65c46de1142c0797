package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/adcrawl"
	"github.com/fwojciec/adcrawl/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPacer returns a Pacer that records requested sleeps instead of
// waiting, with a fixed random source.
func recordingPacer(float float64) (*crawl.Pacer, *[]time.Duration) {
	var slept []time.Duration
	p := &crawl.Pacer{
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		},
		Float: func() float64 { return float },
	}
	return p, &slept
}

func TestPacer_WithRetry(t *testing.T) {
	t.Parallel()

	timeout := fmt.Errorf("goto: %w", context.DeadlineExceeded)

	t.Run("returns nil on first success", func(t *testing.T) {
		t.Parallel()
		p, slept := recordingPacer(0)

		calls := 0
		err := p.WithRetry(context.Background(), 3, time.Second, func(context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, *slept)
	})

	t.Run("retries timeouts with exponential backoff", func(t *testing.T) {
		t.Parallel()
		p, slept := recordingPacer(0)

		calls := 0
		err := p.WithRetry(context.Background(), 3, 1200*time.Millisecond, func(context.Context) error {
			calls++
			if calls < 3 {
				return timeout
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{1200 * time.Millisecond, 2400 * time.Millisecond}, *slept)
	})

	t.Run("returns last timeout when exhausted without a trailing wait", func(t *testing.T) {
		t.Parallel()
		p, slept := recordingPacer(0)

		calls := 0
		err := p.WithRetry(context.Background(), 2, time.Second, func(context.Context) error {
			calls++
			return adcrawl.Errorf(adcrawl.ETIMEOUT, "attempt %d", calls)
		})

		require.Error(t, err)
		assert.Equal(t, "attempt 2", adcrawl.ErrorMessage(err))
		assert.Equal(t, 2, calls)
		assert.Len(t, *slept, 1)
	})

	t.Run("does not retry other failures", func(t *testing.T) {
		t.Parallel()
		p, slept := recordingPacer(0)
		boom := errors.New("net::ERR_NAME_NOT_RESOLVED")

		calls := 0
		err := p.WithRetry(context.Background(), 3, time.Second, func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
		assert.Empty(t, *slept)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()
		p, _ := recordingPacer(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.WithRetry(ctx, 3, time.Second, func(context.Context) error {
			return timeout
		})

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("reports each retry", func(t *testing.T) {
		t.Parallel()
		p, _ := recordingPacer(0)
		var attempts []int
		p.OnRetry = func(attempt int, _ time.Duration, _ error) {
			attempts = append(attempts, attempt)
		}

		_ = p.WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
			return timeout
		})

		assert.Equal(t, []int{1, 2}, attempts)
	})
}

func TestPacer_Backoff(t *testing.T) {
	t.Parallel()

	p, _ := recordingPacer(0.5)

	assert.Equal(t, 1500*time.Millisecond+400*time.Millisecond, p.Backoff(1500*time.Millisecond, 0))
	assert.Equal(t, 6*time.Second+400*time.Millisecond, p.Backoff(1500*time.Millisecond, 2))
}

func TestPacer_HumanPause(t *testing.T) {
	t.Parallel()

	t.Run("stays within bounds", func(t *testing.T) {
		t.Parallel()
		low, slept := recordingPacer(0)
		high, sleptHigh := recordingPacer(0.999)

		require.NoError(t, low.HumanPause(context.Background(), time.Second, 2*time.Second))
		require.NoError(t, high.HumanPause(context.Background(), time.Second, 2*time.Second))

		assert.Equal(t, time.Second, (*slept)[0])
		assert.GreaterOrEqual(t, (*sleptHigh)[0], time.Second)
		assert.LessOrEqual(t, (*sleptHigh)[0], 2*time.Second)
	})

	t.Run("real pause respects cancellation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := crawl.NewPacer().HumanPause(ctx, time.Minute, 2*time.Minute)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
