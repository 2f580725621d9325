// Package http is the platform HTTP layer: the response envelope, handler
// adapters, the router seam over chi and the server
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "stealthbridge/internal/platform/errors"
	pnet "stealthbridge/internal/platform/net"
)

// Envelope is the body of every API response
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce; Body is either data or an error
type Response struct {
	Status int
	Body   any
	// Kind and Details decorate error envelopes only
	Kind    string
	Details map[string]any
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		status, env := h(r).envelope(pnet.RequestID(r.Context()))
		JSON(w, status, env)
	}
}

func (resp Response) envelope(reqID string) (int, Envelope) {
	env := Envelope{RequestID: reqID}
	status := resp.Status
	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		wr := perr.WireFrom(err)
		env.Code, env.Error, env.Field = wr.Code, wr.Message, wr.Field
		env.Kind, env.Details = resp.Kind, resp.Details
	} else {
		env.Data = resp.Body
	}
	if status == 0 {
		status = stdhttp.StatusOK
	}
	env.StatusCode, env.Status = status, stdhttp.StatusText(status)
	return status, env
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error returns a response whose status and envelope derive from err
func Error(err error) Response { return Response{Body: err} }

// Fault is Error with a caller facing kind and details attached
func Fault(err error, kind string, details map[string]any) Response {
	return Response{Body: err, Kind: kind, Details: details}
}
