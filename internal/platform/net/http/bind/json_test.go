package bind

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "stealthbridge/internal/platform/errors"
)

type sinceInput struct {
	Since  string `json:"since" validate:"required,datetime=2006-01-02"`
	Method string `json:"method,omitempty" validate:"omitempty,max=8"`
}

func req(method, body string) *http.Request {
	return httptest.NewRequest(method, "/stats/methods", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		method   string
		body     string
		opts     []JSONOptions
		wantCode perr.ErrorCode // 0 means success
		want     sinceInput
	}{
		{"ok", http.MethodPost, `{"since":"2026-10-01","method":"proveJwt"}`, nil, 0, sinceInput{"2026-10-01", "proveJwt"}},
		{"empty post", http.MethodPost, ``, nil, perr.ErrorCodeJSON, sinceInput{}},
		{"empty get", http.MethodGet, ``, nil, 0, sinceInput{}},
		{"empty allowed", http.MethodPost, ``, []JSONOptions{{AllowEmptyBody: true}}, 0, sinceInput{}},
		{"broken", http.MethodPost, `{"since":`, nil, perr.ErrorCodeJSON, sinceInput{}},
		{"unknown field", http.MethodPost, `{"since":"2026-10-01","x":1}`, nil, perr.ErrorCodeJSON, sinceInput{}},
		{"unknown allowed", http.MethodPost, `{"since":"2026-10-01","x":1}`, []JSONOptions{{}}, 0, sinceInput{Since: "2026-10-01"}},
		{"trailing", http.MethodPost, `{"since":"2026-10-01"} {}`, nil, perr.ErrorCodeJSON, sinceInput{}},
		{"bad date", http.MethodPost, `{"since":"10/01/2026"}`, nil, perr.ErrorCodeValidation, sinceInput{}},
		{"too long", http.MethodPost, `{"since":"2026-10-01","method":"generateEphemeralKey"}`, nil, perr.ErrorCodeValidation, sinceInput{}},
		{"over limit", http.MethodPost, `{"since":"2026-10-01"}`, []JSONOptions{{MaxBytes: 8}}, perr.ErrorCodeJSON, sinceInput{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseJSON[sinceInput](req(tc.method, tc.body), tc.opts...)
			if tc.wantCode != 0 {
				if perr.CodeOf(err) != tc.wantCode {
					t.Fatalf("code = %v want %v (%v)", perr.CodeOf(err), tc.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestParseJSON_ValidationNamesWireField(t *testing.T) {
	t.Parallel()
	_, err := ParseJSON[sinceInput](req(http.MethodPost, `{"since":"2026-10-01","method":"generateEphemeralKey"}`))
	e, ok := perr.As(err)
	if !ok || e.Field() != "method" || e.Error() == "" {
		t.Fatalf("err = %v", err)
	}
	if msg := perr.WireFrom(err).Message; msg != "method must be at most 8" {
		t.Fatalf("message = %q", msg)
	}
}

func TestParseJSON_NonStructTarget(t *testing.T) {
	t.Parallel()
	_, err := ParseJSON[map[string]any](req(http.MethodPost, `{"a":1}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("err = %v", err)
	}
}

func TestParseObject(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		body    string
		wantErr bool
		wantLen int
	}{
		{"object", `{"srsPath":"/srs","proof":"AA=="}`, false, 2},
		{"empty body", ``, false, 0},
		{"blank body", "  \n", false, 0},
		{"null", `null`, true, 0},
		{"array", `[1,2]`, true, 0},
		{"trailing", `{"a":1} {"b":2}`, true, 0},
		{"broken", `{"a":`, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseObject(req(http.MethodPost, tc.body), 0)
			if tc.wantErr {
				if perr.CodeOf(err) != perr.ErrorCodeJSON {
					t.Fatalf("want JSON error, got %v (%v)", perr.CodeOf(err), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.wantLen {
				t.Fatalf("len = %d want %d (%v)", len(got), tc.wantLen, got)
			}
		})
	}
}

func TestParseObject_KeepsNumbers(t *testing.T) {
	t.Parallel()
	got, err := ParseObject(req(http.MethodPost, `{"ephemeralSalt":12345678901234567890}`), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := got["ephemeralSalt"].(json.Number)
	if !ok || n.String() != "12345678901234567890" {
		t.Fatalf("salt = %#v", got["ephemeralSalt"])
	}
}

func TestParseObject_MaxBytes(t *testing.T) {
	t.Parallel()
	body := `{"proof":"` + strings.Repeat("A", 64) + `"}`
	if _, err := ParseObject(req(http.MethodPost, body), 16); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("want JSON error on oversize body, got %v", err)
	}
}
