package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevin07696/borica-gateway/internal/adapters/borica"
	"github.com/kevin07696/borica-gateway/internal/adapters/keys"
	"github.com/kevin07696/borica-gateway/internal/config"
	"github.com/kevin07696/borica-gateway/internal/handlers/callback"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
	pkghttp "github.com/kevin07696/borica-gateway/pkg/http"
	"github.com/kevin07696/borica-gateway/pkg/middleware"
	"github.com/kevin07696/borica-gateway/pkg/observability"
	"github.com/kevin07696/borica-gateway/pkg/resilience"
	"github.com/kevin07696/borica-gateway/pkg/shutdown"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := cfg.Logger.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting BORICA gateway service",
		zap.String("environment", cfg.Borica.Environment),
		zap.String("terminal", cfg.Borica.Terminal),
		zap.String("mac_variant", cfg.Variant().String()),
		zap.String("key_source", cfg.Keys.Source),
	)

	timeouts := resilience.DefaultTimeoutConfig()

	engine, err := loadEngine(cfg, timeouts, logger)
	if err != nil {
		logger.Fatal("Failed to load key material", zap.Error(err))
	}

	gatewayCfg := cfg.GatewayClientConfig()
	client := borica.NewGatewayClient(gatewayCfg, engine, logger,
		borica.WithHTTPClient(pkghttp.NewClient(pkghttp.GatewayClientConfig(), gatewayCfg.Timeout)),
		borica.WithTimeouts(timeouts),
	)
	logger.Info("Gateway client initialized",
		zap.String("url", client.URL()),
		zap.Int("max_retries", gatewayCfg.MaxRetries),
	)

	health := observability.NewHealthChecker().
		Register("signature_engine", func(ctx context.Context) error {
			if !engine.CanSign() && !engine.CanVerify() {
				return fmt.Errorf("no key material loaded")
			}
			return nil
		}).
		Register("gateway_circuit", func(ctx context.Context) error {
			if state := client.CircuitState(); state == borica.StateOpen {
				return fmt.Errorf("circuit breaker is %s", state)
			}
			return nil
		})

	handler := callback.NewHandler(engine, cfg.Variant(), client, cfg.NewRequest, logger)
	rateLimiter := middleware.NewRateLimiter(float64(cfg.Server.RateLimit), cfg.Server.RateBurst, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Timeout(timeouts))
	r.Use(chimw.Compress(5, "text/html", "application/json"))

	r.With(rateLimiter.Middleware, observability.HTTPMetrics("/callback")).
		Post("/callback", handler.HandleCallback)
	r.With(rateLimiter.Middleware, observability.HTTPMetrics("/form")).
		Get("/form", handler.GetPaymentForm)
	r.Get("/health", health.HealthHandler())
	r.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeouts.HTTPHandler + 5*time.Second,
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsPort > 0 && cfg.Server.MetricsPort != cfg.Server.Port {
		metricsServer = observability.StartMetricsServer(
			net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.MetricsPort)), health, logger)
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	manager := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)
	manager.RegisterNoErr("rate_limiter", rateLimiter.Shutdown)
	if metricsServer != nil {
		manager.RegisterHTTPServer("metrics_server", metricsServer)
	}
	manager.RegisterHTTPServer("http_server", httpServer)

	manager.WaitForShutdown(context.Background())
	logger.Info("Servers stopped")
}

func loadEngine(cfg *config.Config, timeouts *resilience.TimeoutConfig, logger *zap.Logger) (*crypto.SignatureEngine, error) {
	ctx, cancel := timeouts.KeyLoadContext(context.Background())
	defer cancel()

	reader, err := cfg.SecretReader(ctx, logger)
	if err != nil {
		return nil, err
	}
	engine, err := keys.LoadSignatureEngine(ctx, reader, cfg.KeyPaths())
	if err != nil {
		return nil, err
	}

	logger.Info("Signature engine ready",
		zap.Bool("can_sign", engine.CanSign()),
		zap.Bool("can_verify", engine.CanVerify()),
		zap.String("certificate_fingerprint", engine.PublicKeyFingerprint()),
	)
	return engine, nil
}
