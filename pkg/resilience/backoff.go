package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines retry backoff behavior
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff spaces gateway retries as BaseDelay*Multiplier^n,
// capped at MaxDelay and spread by a symmetric Jitter fraction.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
}

// DefaultExponentialBackoff returns the gateway retry schedule:
// roughly 100ms, 200ms, 400ms, 800ms with 10% jitter.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// NextDelay returns the delay before retry n (0-indexed).
// Negative n yields BaseDelay.
func (eb *ExponentialBackoff) NextDelay(n int) time.Duration {
	if n < 0 {
		return eb.BaseDelay
	}

	delay := math.Min(float64(eb.BaseDelay)*math.Pow(eb.Multiplier, float64(n)), float64(eb.MaxDelay))
	if eb.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * eb.Jitter
	}
	if delay < 0 {
		return eb.BaseDelay
	}
	return time.Duration(delay)
}

// FixedBackoff waits the same delay before every retry
type FixedBackoff struct {
	Delay time.Duration
}

// NextDelay returns the fixed delay regardless of attempt number
func (fb *FixedBackoff) NextDelay(attempt int) time.Duration {
	return fb.Delay
}

// Wait blocks for the delay before retry number attempt (1-indexed) and
// returns it, or returns ctx.Err() early when ctx ends first.
func Wait(ctx context.Context, strategy BackoffStrategy, attempt int) (time.Duration, error) {
	delay := strategy.NextDelay(attempt - 1)
	if delay <= 0 {
		return 0, ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}
