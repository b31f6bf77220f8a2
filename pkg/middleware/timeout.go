package middleware

import (
	"net/http"

	"github.com/kevin07696/borica-gateway/pkg/resilience"
)

// Timeout bounds each request with the handler timeout unless the incoming
// context already carries a deadline.
func Timeout(config *resilience.TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := config.HandlerContext(r.Context())
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
