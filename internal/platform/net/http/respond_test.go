package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "stealthbridge/internal/platform/errors"
	pnet "stealthbridge/internal/platform/net"
)

func serveResponse(t *testing.T, resp Response) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodPost, "/channel/proveJwt", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "req-1", ""))
	rr := httptest.NewRecorder()
	Handle(func(*stdhttp.Request) Response { return resp })(rr, req)

	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rr.Body.String())
	}
	if env.RequestID != "req-1" || env.StatusCode != rr.Code || env.Status != stdhttp.StatusText(rr.Code) {
		t.Fatalf("envelope header = %+v status %d", env, rr.Code)
	}
	return rr, env
}

func TestHandle_Data(t *testing.T) {
	t.Parallel()
	rr, env := serveResponse(t, OK(map[string]any{"isValid": true}))
	if rr.Code != stdhttp.StatusOK || rr.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("status=%d headers=%v", rr.Code, rr.Header())
	}
	if data, _ := env.Data.(map[string]any); data["isValid"] != true {
		t.Fatalf("data = %v", env.Data)
	}
	if env.Code != 0 || env.Error != "" {
		t.Fatalf("error fields on success: %+v", env)
	}
}

func TestHandle_ZeroStatusIsOK(t *testing.T) {
	t.Parallel()
	rr, env := serveResponse(t, Response{Body: "go1.25 linux/amd64"})
	if rr.Code != stdhttp.StatusOK || env.Data != "go1.25 linux/amd64" {
		t.Fatalf("status=%d data=%v", rr.Code, env.Data)
	}
}

func TestHandle_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		resp       Response
		wantStatus int
		wantCode   perr.ErrorCode
		wantField  string
		wantKind   string
	}{
		{
			name:       "invalid argument with field",
			resp:       Error(perr.WithField(perr.InvalidArgf("srsPath is required"), "srsPath")),
			wantStatus: stdhttp.StatusUnprocessableEntity,
			wantCode:   perr.ErrorCodeInvalidArgument,
			wantField:  "srsPath",
		},
		{
			name:       "fault carries kind",
			resp:       Fault(perr.Nativef("prover failed"), "NativeError", map[string]any{"trace": "goroutine 7"}),
			wantStatus: stdhttp.StatusInternalServerError,
			wantCode:   perr.ErrorCodeNative,
			wantKind:   "NativeError",
		},
		{
			name:       "foreign error",
			resp:       Error(errors.New("boom")),
			wantStatus: stdhttp.StatusInternalServerError,
			wantCode:   perr.ErrorCodeUnknown,
		},
		{
			name:       "error status wins over Status",
			resp:       Response{Status: stdhttp.StatusOK, Body: perr.NotImplementedf("teleport")},
			wantStatus: stdhttp.StatusNotImplemented,
			wantCode:   perr.ErrorCodeNotImplemented,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr, env := serveResponse(t, tt.resp)
			if rr.Code != tt.wantStatus || env.Code != tt.wantCode {
				t.Fatalf("status=%d code=%v", rr.Code, env.Code)
			}
			if env.Field != tt.wantField || env.Kind != tt.wantKind || env.Data != nil {
				t.Fatalf("envelope = %+v", env)
			}
			if tt.wantKind != "" && env.Details["trace"] != "goroutine 7" {
				t.Fatalf("details = %v", env.Details)
			}
		})
	}
}
