package auth

import (
	"net/http"
	"strings"
)

// AdminTokenHeader is the dedicated header for the admin token.
const AdminTokenHeader = "X-Admin-Token"

// TokenFromRequest returns the admin token from X-Admin-Token, falling back to
// "Authorization: Bearer <token>". It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(AdminTokenHeader)); t != "" {
		return t
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
