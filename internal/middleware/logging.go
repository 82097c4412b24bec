package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request identifier to the backend.
const RequestIDHeader = "X-Request-ID"

// RequestID sets a fresh uuid in X-Request-ID unless the caller set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(req)
		})
	}
}

// Logging logs every backend request with method, path, status and duration.
// Transport failures log at WARN, 5xx responses at WARN, the rest at DEBUG.
func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start).Milliseconds()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"request_id", req.Header.Get(RequestIDHeader),
				"duration_ms", duration,
			}
			switch {
			case err != nil:
				slog.Warn("Backend request failed", append(attrs, "error", err)...)
			case resp.StatusCode >= 500:
				slog.Warn("Backend request error", append(attrs, "status", resp.StatusCode)...)
			default:
				slog.Debug("Backend request ok", append(attrs, "status", resp.StatusCode)...)
			}
			return resp, err
		})
	}
}
