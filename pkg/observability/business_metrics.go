package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes. A mismatch is data about the message; a key error is
// a configuration fault. They are kept apart so alerts can target the latter.
const (
	VerificationVerified = "verified"
	VerificationMismatch = "mismatch"
	VerificationKeyError = "key_error"
)

var (
	signaturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borica_signatures_total",
		Help: "Total number of request signatures computed",
	}, []string{
		"trtype", // 1, 12, 21, 22, 24, 90
		"status", // ok, error
	})

	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borica_verifications_total",
		Help: "Total number of response signature verifications",
	}, []string{
		"trtype",
		"result", // verified, mismatch, key_error
	})

	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borica_gateway_requests_total",
		Help: "Total number of requests sent to the gateway",
	}, []string{
		"trtype",
		"status", // ok, validation_error, transport_error, circuit_open
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "borica_gateway_request_duration_seconds",
		Help: "Time to complete a gateway request including retries",
		// Buckets: 100ms to 30s
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"trtype",
	})

	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borica_responses_total",
		Help: "Gateway responses and callbacks by response code",
	}, []string{
		"trtype",
		"rc",
		"source", // gateway, callback
	})
)

// RecordSignature records a signing attempt
func RecordSignature(trtype string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	signaturesTotal.WithLabelValues(trtype, status).Inc()
}

// RecordVerification records a verification outcome (Verification* constants)
func RecordVerification(trtype, result string) {
	verificationsTotal.WithLabelValues(trtype, result).Inc()
}

// RecordGatewayRequest records a completed gateway round trip
func RecordGatewayRequest(trtype, status string, durationSeconds float64) {
	gatewayRequestsTotal.WithLabelValues(trtype, status).Inc()
	gatewayRequestDuration.WithLabelValues(trtype).Observe(durationSeconds)
}

// RecordResponse records the RC of a parsed response
func RecordResponse(trtype, rc, source string) {
	if rc == "" {
		rc = "none"
	}
	responsesTotal.WithLabelValues(trtype, rc, source).Inc()
}
