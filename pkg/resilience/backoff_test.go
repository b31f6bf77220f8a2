package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_Schedule(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for n, expected := range want {
		assert.Equal(t, expected, backoff.NextDelay(n), "retry %d", n)
	}
	assert.Equal(t, backoff.BaseDelay, backoff.NextDelay(-3))
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	seen := map[time.Duration]struct{}{}
	for i := 0; i < 50; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 360*time.Millisecond)
		assert.LessOrEqual(t, d, 440*time.Millisecond)
		seen[d] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "jitter should vary the delay")
}

// The default retry budget must fit inside the gateway timeout
func TestExponentialBackoff_FitsGatewayBudget(t *testing.T) {
	backoff := DefaultExponentialBackoff()
	timeouts := DefaultTimeoutConfig()

	var total time.Duration
	for n := 0; n < 3; n++ {
		total += backoff.NextDelay(n)
	}
	assert.Less(t, total, timeouts.Gateway)
}

func TestFixedBackoff_NextDelay(t *testing.T) {
	backoff := &FixedBackoff{Delay: 250 * time.Millisecond}
	for n := 0; n < 4; n++ {
		assert.Equal(t, 250*time.Millisecond, backoff.NextDelay(n))
	}
}

func TestWait(t *testing.T) {
	t.Run("returns the slept delay", func(t *testing.T) {
		delay, err := Wait(context.Background(), &FixedBackoff{Delay: time.Millisecond}, 1)
		require.NoError(t, err)
		assert.Equal(t, time.Millisecond, delay)
	})

	t.Run("zero delay returns immediately", func(t *testing.T) {
		delay, err := Wait(context.Background(), &FixedBackoff{}, 2)
		require.NoError(t, err)
		assert.Zero(t, delay)
	})

	t.Run("attempt is one-indexed", func(t *testing.T) {
		backoff := &ExponentialBackoff{BaseDelay: time.Millisecond, MaxDelay: time.Second, Multiplier: 10}
		delay, err := Wait(context.Background(), backoff, 2)
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, delay)
	})

	t.Run("cancelled context ends the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		_, err := Wait(ctx, &FixedBackoff{Delay: time.Minute}, 1)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("zero delay still reports a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Wait(ctx, &FixedBackoff{}, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
