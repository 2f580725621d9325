package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
)

// DefaultMaxBytes caps a body when the caller sets no limit
const DefaultMaxBytes int64 = 1 << 20

// JSONOptions controls ParseJSON
type JSONOptions struct {
	MaxBytes        int64 // default DefaultMaxBytes
	DisallowUnknown bool
	AllowEmptyBody  bool
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{MaxBytes: DefaultMaxBytes, DisallowUnknown: true}
}

// openBody returns a decoder over at most maxBytes of the body and whether the body is empty
func openBody(r *http.Request, maxBytes int64) (*json.Decoder, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	br := bufio.NewReader(io.LimitReader(r.Body, maxBytes))
	_, err := br.Peek(1)
	return json.NewDecoder(br), err != nil
}

func closeBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close request body")
	}
}

// ParseJSON decodes the body into T and validates it.
// An empty body is fine for GET, DELETE, HEAD and OPTIONS.
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer closeBody(r)

	dec, empty := openBody(r, o.MaxBytes)
	if empty && !o.AllowEmptyBody {
		switch r.Method {
		case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return dst, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// ParseObject decodes a JSON object into a free form map; numbers stay json.Number.
// An empty body yields an empty map.
func ParseObject(r *http.Request, maxBytes int64) (map[string]any, error) {
	defer closeBody(r)

	dec, empty := openBody(r, maxBytes)
	if empty {
		return map[string]any{}, nil
	}
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, perr.JSONErrf("invalid JSON: %v", err)
	}
	if out == nil {
		return nil, perr.JSONErrf("body must be a JSON object")
	}
	if dec.More() {
		return nil, perr.JSONErrf("unexpected trailing data")
	}
	return out, nil
}
