// Package httpkit is the HTTP surface modules build on; it re-exports the
// platform http types so modules never import internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "stealthbridge/internal/platform/net/http"
	"stealthbridge/internal/platform/net/http/bind"
)

type (
	// Envelope is the response body of every endpoint
	Envelope = phttp.Envelope

	// Response is what return-style handlers produce
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Fault returns an error response decorated with a kind and details
func Fault(err error, kind string, details map[string]any) Response {
	return phttp.Fault(err, kind, details)
}

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param returns a named path parameter of the matched route
func Param(r *http.Request, key string) string { return phttp.Param(r, key) }

// ParseObject decodes a free-form JSON object body of at most maxBytes
func ParseObject(r *http.Request, maxBytes int64) (map[string]any, error) {
	return bind.ParseObject(r, maxBytes)
}
