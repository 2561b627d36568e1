package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	respond "github.com/novendor/novendor-site/server/internal/api/respond"
)

// Middleware turns a panic in any booking handler into a logged 500 JSON error.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				// client went away; net/http expects the panic to propagate
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			respond.WriteInternalError(w, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
