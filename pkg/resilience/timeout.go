package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the timeout hierarchy, outermost first:
//
//	HTTP handler (60s) > gateway round trip incl. retries (45s) > key loading (10s)
//
// Each layer must finish before its parent times out.
type TimeoutConfig struct {
	HTTPHandler time.Duration
	Gateway     time.Duration
	KeyLoad     time.Duration
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 60 * time.Second,
		Gateway:     45 * time.Second,
		KeyLoad:     10 * time.Second,
	}
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// GatewayContext creates a context with timeout for a gateway call
func (tc *TimeoutConfig) GatewayContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Gateway)
}

// KeyLoadContext creates a context with timeout for reading key material
func (tc *TimeoutConfig) KeyLoadContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.KeyLoad)
}
