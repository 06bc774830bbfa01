package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/mosswell/inkwell/internal/ratelimit"
	pkghttp "github.com/mosswell/inkwell/pkg/http"
)

// SlidingWindowByIP enforces the given limiter keyed by client IP and
// surfaces the remaining budget in X-RateLimit headers on every response.
// A denied request gets 429 with Retry-After set to when capacity frees up.
func SlidingWindowByIP(limiter *ratelimit.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(pkghttp.ClientIP(r))

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(time.Until(res.ResetTime).Seconds()) + 1
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				pkghttp.WriteTooManyRequests(w, "rate_limit_exceeded",
					"Too many requests from this address. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit is a coarse per-IP burst cap in front of the login
// endpoint. It sheds raw request floods before any credential work; the
// sliding-window limiter and per-account throttle behind it handle guessing.
func LoginRateLimit(requestsPerWindow int, window time.Duration) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerWindow,
		window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later."}`))
		}),
	)
}
