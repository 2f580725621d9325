package bind

import (
	"testing"

	perr "stealthbridge/internal/platform/errors"
)

func TestVar(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		value any
		tag   string
		want  string
	}{
		{"decimal ok", "123456789012345678901234567890", "number", ""},
		{"hex rejected", "0x1f", "number", "ephemeralSalt must be a decimal integer"},
		{"min", 1, "min=2", "ephemeralSalt must be at least 2"},
		{"required", "", "required", "ephemeralSalt is a required field"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Var("ephemeralSalt", tc.value, tc.tag)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeValidation || e.Field() != "ephemeralSalt" {
				t.Fatalf("err = %#v", err)
			}
			if msg := perr.WireFrom(err).Message; msg != tc.want {
				t.Fatalf("message = %q want %q", msg, tc.want)
			}
		})
	}
}

func TestStruct_NoTagFallsBackToFieldName(t *testing.T) {
	t.Parallel()
	type noTag struct {
		KeyID string `validate:"required"`
	}
	e, ok := perr.As(Struct(noTag{}))
	if !ok || e.Field() != "KeyID" {
		t.Fatalf("err = %v", e)
	}
}

func TestValidationFieldAndMessage_Plain(t *testing.T) {
	t.Parallel()
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil: %q %q", f, m)
	}
	if f, m := ValidationFieldAndMessage(perr.InvalidArgf("boom")); f != "" || m != "boom" {
		t.Fatalf("plain: %q %q", f, m)
	}
}
