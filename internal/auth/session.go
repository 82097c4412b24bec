package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims represents the JWT claims the backend puts in a session token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken decodes the claims of a session token without verifying its
// signature. Only the backend holds the signing key; the client reads the
// claims to know who is signed in and when the token expires.
func ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// Session holds the token of the signed-in user.
// It is safe for concurrent use and implements middleware.TokenSource.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
	now    func() time.Time
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Set stores a token. Tokens that are not JWTs are kept as opaque bearer
// tokens without claims.
func (s *Session) Set(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	claims, err := ParseToken(token)
	if err != nil {
		claims = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
	return nil
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = nil
}

// Token returns the bearer token, or "" when signed out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return ""
	}
	return s.token
}

// Active reports whether a non-expired token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// Expired reports whether the token carries an expiry that has passed.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiredLocked()
}

// Claims returns a copy of the token claims, or nil for opaque tokens.
func (s *Session) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil
	}
	c := *s.claims
	return &c
}

// UserID returns the user ID claim, or "".
func (s *Session) UserID() string {
	if c := s.Claims(); c != nil {
		return c.UserID
	}
	return ""
}

func (s *Session) expiredLocked() bool {
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(s.claims.ExpiresAt.Time)
}
