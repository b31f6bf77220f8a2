package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kevin07696/borica-gateway/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	defer rl.Shutdown()
	handler := rl.Middleware(okHandler)

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/callback", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"), "port does not split the client")
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	defer rl.Shutdown()

	now := time.Unix(1_600_000_000, 0)
	rl.now = func() time.Time { return now }
	rl.limiterFor("a")
	rl.limiterFor("b")

	now = now.Add(10 * time.Minute)
	rl.limiterFor("b")

	assert.Equal(t, 1, rl.cleanup())
	assert.Len(t, rl.limiters, 1)
}

func TestRateLimiter_EvictsOldestAtCapacity(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	defer rl.Shutdown()
	rl.maxSize = 2

	now := time.Unix(1_600_000_000, 0)
	rl.now = func() time.Time { now = now.Add(time.Second); return now }
	rl.limiterFor("a")
	rl.limiterFor("b")
	rl.limiterFor("c")

	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "c")
}

func TestTimeout_AddsDeadline(t *testing.T) {
	config := &resilience.TimeoutConfig{HTTPHandler: time.Second}
	var hasDeadline bool
	handler := Timeout(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestTimeout_RespectsParentDeadline(t *testing.T) {
	config := &resilience.TimeoutConfig{HTTPHandler: time.Hour}
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := parent.Deadline()

	var got time.Time
	handler := Timeout(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(parent))

	assert.Equal(t, want, got)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging_PassesThrough(t *testing.T) {
	handler := Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
