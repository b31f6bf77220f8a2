package borica

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/observability"
	"github.com/kevin07696/borica-gateway/pkg/resilience"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// SandboxURL is the development e-Gateway endpoint
	SandboxURL = "https://3dsgate-dev.borica.bg/cgi-bin/cgi_link"
	// ProductionURL is the live e-Gateway endpoint
	ProductionURL = "https://3dsgate.borica.bg/cgi-bin/cgi_link"

	maxResponseBody = 1 << 20
)

// Engine signs requests and verifies responses
type Engine interface {
	Signer
	Verifier
}

// GatewayConfig contains configuration for the gateway client
type GatewayConfig struct {
	// Environment is "sandbox" or "production"
	Environment string

	// URL overrides the environment endpoint
	URL string

	// HTTP client timeout per attempt
	Timeout time.Duration

	// Retry configuration for transport failures and 5xx responses
	MaxRetries int

	// Client-side rate limit (requests per second) and burst; 0 disables it
	RateLimit float64
	Burst     int

	// Variant selects the MAC tables used to sign and verify
	Variant domain.MacVariant
}

// GatewayURL returns the endpoint for an environment
func GatewayURL(environment string) string {
	if environment == "sandbox" || environment == "development" {
		return SandboxURL
	}
	return ProductionURL
}

// DefaultGatewayConfig returns default configuration for environment
func DefaultGatewayConfig(environment string) *GatewayConfig {
	return &GatewayConfig{
		Environment: environment,
		URL:         GatewayURL(environment),
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RateLimit:   10,
		Burst:       5,
		Variant:     domain.MacVariantExtended,
	}
}

// GatewayClient submits signed requests to the e-Gateway and verifies replies.
// It is safe for concurrent use.
type GatewayClient struct {
	config         *GatewayConfig
	engine         Engine
	httpClient     ports.HTTPClient
	logger         *zap.Logger
	circuitBreaker *CircuitBreaker
	backoff        resilience.BackoffStrategy
	limiter        *rate.Limiter
	timeouts       *resilience.TimeoutConfig
	now            func() time.Time
}

// GatewayOption customizes a GatewayClient
type GatewayOption func(*GatewayClient)

// WithHTTPClient replaces the default *http.Client
func WithHTTPClient(client ports.HTTPClient) GatewayOption {
	return func(c *GatewayClient) { c.httpClient = client }
}

// WithBackoff replaces the retry backoff strategy
func WithBackoff(backoff resilience.BackoffStrategy) GatewayOption {
	return func(c *GatewayClient) { c.backoff = backoff }
}

// WithCircuitBreaker replaces the default circuit breaker
func WithCircuitBreaker(cb *CircuitBreaker) GatewayOption {
	return func(c *GatewayClient) { c.circuitBreaker = cb }
}

// WithTimeouts replaces the timeout budgets; Submit is bound by Gateway
func WithTimeouts(timeouts *resilience.TimeoutConfig) GatewayOption {
	return func(c *GatewayClient) { c.timeouts = timeouts }
}

// WithClock replaces time.Now for timestamps
func WithClock(now func() time.Time) GatewayOption {
	return func(c *GatewayClient) { c.now = now }
}

// NewGatewayClient creates a gateway client
func NewGatewayClient(config *GatewayConfig, engine Engine, logger *zap.Logger, opts ...GatewayOption) *GatewayClient {
	if config.URL == "" {
		config.URL = GatewayURL(config.Environment)
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &GatewayClient{
		config:         config,
		engine:         engine,
		httpClient:     &http.Client{Timeout: config.Timeout},
		logger:         logger,
		circuitBreaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		backoff:        resilience.DefaultExponentialBackoff(),
		limiter:        rate.NewLimiter(limit, burst),
		timeouts:       resilience.DefaultTimeoutConfig(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint requests are posted to
func (c *GatewayClient) URL() string { return c.config.URL }

// Variant returns the MAC variant used by the client
func (c *GatewayClient) Variant() domain.MacVariant { return c.config.Variant }

// CircuitState exposes the breaker state for health checks
func (c *GatewayClient) CircuitState() CircuitState { return c.circuitBreaker.State() }

// Prepare stamps, signs and validates req without sending it. Used for
// browser-redirect flows where the cardholder posts the form.
func (c *GatewayClient) Prepare(req *TransactionRequest) error {
	trtype := req.TransactionType.Wire()

	if err := req.Stamp(c.now()); err != nil {
		return err
	}

	err := req.Sign(c.engine, c.config.Variant)
	observability.RecordSignature(trtype, err)
	if err != nil {
		return err
	}

	if errs := req.Validate(); len(errs) > 0 {
		return domain.WrapError(domain.ErrorCodeValidationFailed, "request validation failed", errs).
			WithDetail("fields", errs.Fields())
	}
	return nil
}

// Submit signs req, posts it to the gateway, and parses and verifies the reply.
// A signature mismatch is reported through SignatureVerified, not as an error.
// The whole round trip, retries included, is bound by the gateway timeout.
func (c *GatewayClient) Submit(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	requestID := uuid.NewString()
	trtype := req.TransactionType.Wire()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("trtype", trtype),
		zap.String("terminal", req.Terminal),
		zap.String("order", req.OrderString()),
	)
	start := time.Now()

	if err := c.Prepare(req); err != nil {
		status := "signing_error"
		if domain.IsValidationError(err) {
			status = "validation_error"
		}
		observability.RecordGatewayRequest(trtype, status, time.Since(start).Seconds())
		logger.Error("Failed to prepare gateway request", zap.Error(err))
		return nil, err
	}

	ctx, cancel := c.timeouts.GatewayContext(ctx)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayTimeout, "rate limiter wait cancelled", err)
	}

	logger.Info("Submitting BORICA transaction",
		zap.String("amount", req.AmountString()),
		zap.String("url", c.config.URL),
	)

	form := url.Values{}
	for name, value := range req.ToWireFields() {
		form.Set(name, value)
	}

	var fields domain.FieldMapping
	err := c.circuitBreaker.Call(func() error {
		var callErr error
		fields, callErr = c.postWithRetry(ctx, logger, form)
		return callErr
	})
	if err != nil {
		status := "transport_error"
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyProbes) {
			status = "circuit_open"
			logger.Warn("Circuit breaker is open, rejecting gateway request",
				zap.String("circuit_state", c.circuitBreaker.State().String()),
			)
		}
		observability.RecordGatewayRequest(trtype, status, time.Since(start).Seconds())
		return nil, c.gatewayError(err)
	}
	observability.RecordGatewayRequest(trtype, "ok", time.Since(start).Seconds())

	resp, err := ParseResponse(fields)
	if err != nil {
		logger.Error("Failed to parse gateway response", zap.Error(err))
		return nil, err
	}
	observability.RecordResponse(resp.TransactionType.Wire(), resp.ResponseCode, "gateway")

	if _, err := VerifyAndRecord(resp, c.engine, c.config.Variant, logger); err != nil {
		return nil, err
	}

	logger.Info("Gateway transaction completed",
		zap.String("rc", resp.ResponseCode),
		zap.String("action", resp.Action),
		zap.Bool("successful", resp.IsSuccessful()),
		zap.Bool("signature_verified", resp.SignatureVerified),
	)
	return resp, nil
}

// CheckStatus queries the gateway for the outcome of an earlier transaction
func (c *GatewayClient) CheckStatus(ctx context.Context, terminal string, order int, original domain.TransactionType) (*TransactionResponse, error) {
	req := NewRequest(domain.TransactionTypeStatusCheck)
	req.Terminal = terminal
	req.OriginalTransactionType = original
	req.SetOrder(order)
	return c.Submit(ctx, req)
}

// VerifyAndRecord verifies resp, logs and records the outcome. Mismatches are
// logged at Warn and returned as (false, nil); key errors at Error.
func VerifyAndRecord(resp *TransactionResponse, verifier Verifier, variant domain.MacVariant, logger *zap.Logger) (bool, error) {
	trtype := resp.TransactionType.Wire()

	ok, err := resp.Verify(verifier, variant)
	switch {
	case err != nil:
		observability.RecordVerification(trtype, observability.VerificationKeyError)
		logger.Error("Cannot verify gateway signature", zap.Error(err))
		return false, err
	case !ok:
		observability.RecordVerification(trtype, observability.VerificationMismatch)
		logger.Warn("Gateway signature mismatch",
			zap.String("order", resp.Order),
			zap.String("rc", resp.ResponseCode),
		)
	default:
		observability.RecordVerification(trtype, observability.VerificationVerified)
	}
	return ok, nil
}

func (c *GatewayClient) postWithRetry(ctx context.Context, logger *zap.Logger, form url.Values) (domain.FieldMapping, error) {
	body := form.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay, err := resilience.Wait(ctx, c.backoff, attempt)
			if err != nil {
				return nil, fmt.Errorf("retry cancelled: %w", err)
			}
			logger.Info("Retrying gateway request",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.config.MaxRetries),
				zap.Duration("backoff_delay", delay),
			)
		}

		fields, retryable, err := c.post(ctx, body)
		if err == nil {
			return fields, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Retryable gateway error", zap.Error(err), zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("failed after %d retries: %w", c.config.MaxRetries, lastErr)
}

// post performs a single round trip. retryable reports whether another attempt may succeed.
func (c *GatewayClient) post(ctx context.Context, body string) (domain.FieldMapping, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, strings.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, notSent(err), fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	// 5xx comes from the front end before the transaction is processed
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("gateway returned HTTP %d", httpResp.StatusCode)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("gateway returned HTTP %d", httpResp.StatusCode)
	}

	fields, err := DecodeResponseBody(httpResp.Header.Get("Content-Type"), raw)
	if err != nil {
		return nil, false, err
	}
	return fields, false, nil
}

// notSent reports whether err happened before the request left this host.
// Later failures may have reached the gateway with this NONCE, and a resend
// would be declined as a duplicate, so only these are retried.
func notSent(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *GatewayClient) gatewayError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrorCodeGatewayTimeout, "gateway request timed out", err)
	}
	if domain.GetErrorCode(err) != "" {
		return err
	}
	return domain.WrapError(domain.ErrorCodeGatewayError, "gateway request failed", err)
}

// DecodeResponseBody turns a JSON object or a form-encoded body into fields.
// JSON numbers and booleans are kept in their literal text form.
func DecodeResponseBody(contentType string, body []byte) (domain.FieldMapping, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeResponseInvalid, "empty gateway response")
	}

	if strings.Contains(contentType, "json") || strings.HasPrefix(trimmed, "{") {
		var decoded map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, domain.WrapError(domain.ErrorCodeResponseInvalid, "invalid JSON response", err)
		}
		fields := make(domain.FieldMapping, len(decoded))
		for name, rawValue := range decoded {
			var s string
			if err := json.Unmarshal(rawValue, &s); err == nil {
				fields.Set(name, s)
				continue
			}
			if literal := strings.TrimSpace(string(rawValue)); literal != "null" {
				fields.Set(name, literal)
			}
		}
		return fields, nil
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeResponseInvalid, "invalid form response", err)
	}
	return FieldsFromValues(values), nil
}

// FieldsFromValues keeps the first value of each key
func FieldsFromValues(values url.Values) domain.FieldMapping {
	fields := make(domain.FieldMapping, len(values))
	for name, vs := range values {
		if len(vs) > 0 {
			fields.Set(name, vs[0])
		}
	}
	return fields
}
