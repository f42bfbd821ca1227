package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// RequestLog returns middleware that tags each request with an X-Request-Id
// (kept when the caller already set one) and logs the outcome. Headers are
// never logged.
func RequestLog(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				req = req.Clone(req.Context())
				req.Header.Set(RequestIDHeader, id)
			}

			start := time.Now()
			resp, err := next.RoundTrip(req)
			attrs := []any{
				"request_id", id,
				"method", req.Method,
				"path", req.URL.Path,
				"duration", time.Since(start),
			}

			if err != nil {
				logger.WarnContext(req.Context(), "request failed", append(attrs, "error", err)...)
				return nil, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "request completed", append(attrs, "status", resp.StatusCode)...)
			return resp, nil
		})
	}
}
