package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "stealthbridge/internal/platform/errors"
)

type sinceIn struct {
	Since  string `json:"since" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Method string `json:"method" validate:"omitempty,max=32"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rr.Body.String())
	}
	return env
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		body       string
		fn         func(*stdhttp.Request, sinceIn) (any, error)
		wantStatus int
		wantCode   perr.ErrorCode
		wantCalled bool
	}{
		{
			name:       "valid body",
			body:       `{"since":"2026-10-01T00:00:00Z","method":"proveJwt"}`,
			fn:         func(_ *stdhttp.Request, in sinceIn) (any, error) { return in.Method, nil },
			wantStatus: stdhttp.StatusOK,
			wantCalled: true,
		},
		{
			name:       "malformed json",
			body:       `{"since":`,
			wantStatus: stdhttp.StatusBadRequest,
			wantCode:   perr.ErrorCodeJSON,
		},
		{
			name:       "failed validation",
			body:       `{"since":"yesterday"}`,
			wantStatus: stdhttp.StatusBadRequest,
			wantCode:   perr.ErrorCodeValidation,
		},
		{
			name:       "handler error",
			body:       `{"since":"2026-10-01T00:00:00Z"}`,
			fn:         func(*stdhttp.Request, sinceIn) (any, error) { return nil, perr.Unavailablef("journal disabled") },
			wantStatus: stdhttp.StatusServiceUnavailable,
			wantCode:   perr.ErrorCodeUnavailable,
			wantCalled: true,
		},
		{
			name: "response passes through",
			body: `{"since":"2026-10-01T00:00:00Z"}`,
			fn: func(*stdhttp.Request, sinceIn) (any, error) {
				return Fault(perr.Forbiddenf("not a member"), "NativeError", nil), nil
			},
			wantStatus: stdhttp.StatusForbidden,
			wantCode:   perr.ErrorCodeForbidden,
			wantCalled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			called := false
			h := JSONHandler(func(r *stdhttp.Request, in sinceIn) (any, error) {
				called = true
				return tt.fn(r, in)
			})
			rr := httptest.NewRecorder()
			h(rr, httptest.NewRequest(stdhttp.MethodPost, "/stats/methods", strings.NewReader(tt.body)))

			env := decodeEnvelope(t, rr)
			if rr.Code != tt.wantStatus || env.Code != tt.wantCode || called != tt.wantCalled {
				t.Fatalf("status=%d code=%v called=%v body=%s", rr.Code, env.Code, called, rr.Body.String())
			}
		})
	}
}

func TestCall(t *testing.T) {
	t.Parallel()
	ok := Call(func(*stdhttp.Request) (any, error) { return []string{"proveJwt", "verifyJwt"}, nil })
	rr := httptest.NewRecorder()
	ok(rr, httptest.NewRequest(stdhttp.MethodGet, "/channel", nil))
	if env := decodeEnvelope(t, rr); rr.Code != stdhttp.StatusOK || len(env.Data.([]any)) != 2 {
		t.Fatalf("status=%d data=%v", rr.Code, env.Data)
	}

	failing := Call(func(*stdhttp.Request) (any, error) { return nil, errors.New("boom") })
	rr = httptest.NewRecorder()
	failing(rr, httptest.NewRequest(stdhttp.MethodGet, "/channel", nil))
	if env := decodeEnvelope(t, rr); rr.Code != stdhttp.StatusInternalServerError || env.Error != "boom" {
		t.Fatalf("status=%d env=%+v", rr.Code, env)
	}
}
