package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_AllHealthy(t *testing.T) {
	h := NewHealthChecker().
		Register("signing_key", func(context.Context) error { return nil }).
		Register("certificate", func(context.Context) error { return nil })

	status := h.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["certificate"])
}

func TestHealthChecker_HandlerReportsFailure(t *testing.T) {
	h := NewHealthChecker().
		Register("certificate", func(context.Context) error { return errors.New("not loaded") })

	rec := httptest.NewRecorder()
	h.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "unhealthy: not loaded", body.Checks["certificate"])
}

func TestHTTPMetrics_PassesThroughStatus(t *testing.T) {
	handler := HTTPMetrics("/callback")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetricsMux_Routes(t *testing.T) {
	health := NewHealthChecker().Register("ok", func(ctx context.Context) error { return nil })
	mux := MetricsMux(health)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	MetricsMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
