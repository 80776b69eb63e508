package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/glbobx/glbobx-api/internal/api/shared"
)

// RateLimitMiddleware applies a global token-bucket limit across all
// requests. A single process-wide limiter is intentional: the service
// protects its worker pool, not per-client fairness.
func RateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
