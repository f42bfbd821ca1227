package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// hostRateLimiter keeps one token bucket per destination host.
type hostRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newHostRateLimiter(rps float64, burst int) *hostRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &hostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *hostRateLimiter) getLimiter(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[host] = limiter
	}
	return limiter
}

// RateLimit returns middleware that throttles outbound requests per host.
// rps is the allowed requests per second, burst is the maximum burst size.
// Requests wait for a token; a cancelled request context aborts the wait and
// is returned as the error. rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	limiter := newHostRateLimiter(rps, burst)

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.getLimiter(req.URL.Host).Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}
