package middleware

import (
	"net/http"

	"stealthbridge/internal/platform/logger"
	pnet "stealthbridge/internal/platform/net"
)

// WriteFunc writes body as the response with the given status
type WriteFunc func(w http.ResponseWriter, status int, body any)

// AuthPort resolves which front-end sent a request
type AuthPort interface {
	// Parse returns the caller name or an error
	Parse(r *http.Request) (caller string, err error)
}

// Auth tags the request with its caller; a nil port lets every request through anonymously
func Auth(p AuthPort, write WriteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())
			caller, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, reqID)
				write(w, status, body)
				return
			}
			ctx := pnet.WithRequest(r.Context(), reqID, caller)
			ctx = logger.WithRequest(ctx, reqID, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
