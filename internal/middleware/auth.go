package middleware

import (
	"net/http"
)

// TokenSource supplies the current session token. An empty token means the
// user is signed out.
type TokenSource interface {
	Token() string
}

// BearerAuth adds "Authorization: Bearer <token>" when a token is available
// and the request does not already carry an Authorization header.
func BearerAuth(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if src == nil || req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}
			token := src.Token()
			if token == "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(req)
		})
	}
}
