package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsMux serves /metrics and, when health is non-nil, /health
func MetricsMux(health *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if health != nil {
		mux.HandleFunc("/health", health.HealthHandler())
	}
	return mux
}

// StartMetricsServer listens on addr in the background and returns the server
// for shutdown registration. Listen failures are logged, not fatal.
func StartMetricsServer(addr string, health *HealthChecker, logger *zap.Logger) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           MetricsMux(health),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return server
}
