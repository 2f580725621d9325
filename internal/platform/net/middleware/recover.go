package middleware

import (
	"net/http"
	"runtime/debug"

	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
	pnet "stealthbridge/internal/platform/net"
)

// Recover turns a handler panic into a 500 body and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(write WriteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				reqID := pnet.RequestID(r.Context())
				logger.C(r.Context()).Error().
					Str("request_id", reqID).
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if reqID != "" {
					w.Header().Set("X-Request-ID", reqID)
				}
				status, body := pnet.Error(perr.PanicErrf("panic recovered"), reqID)
				write(w, status, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
