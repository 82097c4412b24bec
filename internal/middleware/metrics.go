package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records request durations. *metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Instrument reports every request to obs. Failed round trips report
// status 0.
func Instrument(obs RequestObserver) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			status := 0
			if err == nil {
				status = resp.StatusCode
			}
			obs.ObserveRequest(req.Method, status, time.Since(start))
			return resp, err
		})
	}
}
