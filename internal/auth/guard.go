// Package auth checks the shared admin token.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	// ErrUnauthorized means the presented token is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServerMisconfigured means no admin secret is configured, so nothing can be authorized.
	ErrServerMisconfigured = errors.New("server misconfigured: admin secret not set")
)

// Guard compares presented tokens against a configured secret.
type Guard struct {
	secret string
}

// NewGuard creates a Guard for secret. An empty secret is allowed and makes
// every Authorize call report ErrServerMisconfigured.
func NewGuard(secret string) *Guard {
	return &Guard{secret: secret}
}

// Configured reports whether a secret is set.
func (g *Guard) Configured() bool {
	return g != nil && g.secret != ""
}

// Authorize checks an Authorization header value. "Bearer <token>" is
// unwrapped; any other value is compared as-is.
func (g *Guard) Authorize(header string) error {
	if !g.Configured() {
		return ErrServerMisconfigured
	}

	token := ExtractToken(header)
	if token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(g.secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// ExtractToken returns the bearer token from header, or the trimmed raw value
// when no bearer scheme is present.
func ExtractToken(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
