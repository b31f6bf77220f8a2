package shutdown

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutdown_duration_seconds",
		Help:    "Total time taken to shutdown gracefully",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutdown_errors_total",
		Help: "Total number of shutdown errors by component",
	}, []string{"component"})
)

// Func shuts down one component
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager shuts registered components down in reverse registration order,
// one at a time, within a shared timeout.
type Manager struct {
	mu         sync.Mutex
	logger     *zap.Logger
	components []component
	timeout    time.Duration
}

// NewManager creates a shutdown manager
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{logger: logger, timeout: timeout}
}

// Register adds a component. Register servers after what they depend on.
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// RegisterHTTPServer registers anything with an http.Server style Shutdown
func (m *Manager) RegisterHTTPServer(name string, server interface{ Shutdown(context.Context) error }) {
	m.Register(name, server.Shutdown)
}

// RegisterNoErr registers a shutdown function that cannot fail
func (m *Manager) RegisterNoErr(name string, fn func()) {
	m.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// WaitForShutdown blocks until SIGINT, SIGTERM or ctx is done, then shuts down
func (m *Manager) WaitForShutdown(ctx context.Context) map[string]error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	m.logger.Info("Received shutdown signal - initiating graceful shutdown",
		zap.Duration("timeout", m.timeout),
	)
	return m.Shutdown()
}

// Shutdown runs every component's shutdown. Errors are returned by component name.
func (m *Manager) Shutdown() map[string]error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	errs := make(map[string]error)
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.fn(ctx); err != nil {
			errs[c.name] = err
			shutdownErrors.WithLabelValues(c.name).Inc()
			m.logger.Error("Component shutdown failed", zap.String("component", c.name), zap.Error(err))
			continue
		}
		m.logger.Info("Component shut down", zap.String("component", c.name))
	}

	shutdownDuration.Observe(time.Since(start).Seconds())
	m.logger.Info("Graceful shutdown completed",
		zap.Int("error_count", len(errs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return errs
}
