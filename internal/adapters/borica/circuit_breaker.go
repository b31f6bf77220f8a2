package borica

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState represents the current state of the circuit breaker
type CircuitState int

const (
	// StateClosed lets gateway requests through
	StateClosed CircuitState = iota
	// StateOpen rejects gateway requests without sending them
	StateOpen
	// StateHalfOpen lets a limited number of probe requests through
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned while the gateway is considered down
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyProbes is returned when half-open probe slots are taken
	ErrTooManyProbes = errors.New("too many requests in half-open state")
)

// CircuitBreakerConfig configures circuit breaker behavior
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failed round trips before opening
	MaxFailures uint32
	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration
	// MaxProbes is the number of concurrent requests allowed while half-open
	MaxProbes uint32
}

// DefaultCircuitBreakerConfig returns the gateway defaults
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
		MaxProbes:   1,
	}
}

// CircuitBreaker guards the gateway transport. Only transport failures count;
// declined transactions and signature mismatches are successful round trips,
// and cancelled calls are not counted at all.
type CircuitBreaker struct {
	mu       sync.Mutex
	config   CircuitBreakerConfig
	state    CircuitState
	failures uint32
	probes   uint32
	changed  time.Time
	now      func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config:  config,
		state:   StateClosed,
		changed: time.Now(),
		now:     time.Now,
	}
}

// Call runs fn when the circuit allows it and records the outcome
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := fn()
	cb.release(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.changed) <= cb.config.Cooldown {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if cb.probes >= cb.config.MaxProbes {
			return ErrTooManyProbes
		}
		cb.probes++
	}
	return nil
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// A caller that gave up says nothing about the gateway; free the probe slot only.
	if errors.Is(err, context.Canceled) {
		if cb.state == StateHalfOpen && cb.probes > 0 {
			cb.probes--
		}
		return
	}

	if err == nil {
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
		}
		cb.failures = 0
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
		cb.transition(StateOpen)
	}
}

// transition must be called with mu held
func (cb *CircuitBreaker) transition(next CircuitState) {
	if cb.state == next {
		return
	}
	cb.state = next
	cb.changed = cb.now()
	cb.probes = 0
	if next != StateOpen {
		cb.failures = 0
	}
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count
func (cb *CircuitBreaker) Failures() uint32 {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
