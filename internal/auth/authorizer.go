// Package auth guards admin-only booking operations with a shared token.
package auth

import (
	"crypto/subtle"
	"net/http"
)

// AdminAuthorizer compares presented tokens against the configured one in
// constant time.
type AdminAuthorizer struct {
	token []byte
}

// NewAdminAuthorizer returns an authorizer for token. An empty token
// rejects every request with ErrNotConfigured.
func NewAdminAuthorizer(token string) *AdminAuthorizer {
	return &AdminAuthorizer{token: []byte(token)}
}

// Configured reports whether admin endpoints are enabled.
func (a *AdminAuthorizer) Configured() bool { return len(a.token) > 0 }

// Check validates a presented token.
func (a *AdminAuthorizer) Check(presented string) error {
	if !a.Configured() {
		return ErrNotConfigured
	}
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), a.token) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Authorize extracts the token from r and checks it.
func (a *AdminAuthorizer) Authorize(r *http.Request) error {
	return a.Check(TokenFromRequest(r))
}
