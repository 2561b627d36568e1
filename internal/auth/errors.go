package auth

import "errors"

var (
	// ErrUnauthorized is returned when the admin token is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured is returned when no admin token is set, which disables admin endpoints.
	ErrNotConfigured = errors.New("admin token not configured")
)
