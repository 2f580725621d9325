package httpkit

import (
	"net/http"

	phttp "stealthbridge/internal/platform/net/http"
	"stealthbridge/internal/platform/net/middleware"
)

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// Protected mounts fn's routes behind bearer auth; a nil port leaves them anonymous
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(Auth(p))
		fn(g)
	})
}
