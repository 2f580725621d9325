package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/net/http/bind"
)

// Args is the untyped argument bag sent with a call
type Args map[string]any

func (a Args) present(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Decode turns an argument bag into the typed request for m
func Decode(m Method, a Args) (Request, error) {
	r, ok := routes[m]
	if !ok || r.decode == nil {
		return nil, perr.NotImplementedf("method %s takes no arguments", m)
	}
	req, err := r.decode(a)
	if err != nil {
		return nil, perr.WithOp(err, string(m))
	}
	return req, nil
}

func decodeAs[T Request](a Args) (Request, error) {
	v, err := decodeFields[T](a)
	if err != nil {
		return nil, err
	}
	return v, nil
}

var claimKeys = argNames(reflect.TypeFor[ProveJwtClaims]())

func decodeProveJwt(a Args) (Request, error) {
	explicit := false
	for _, k := range claimKeys {
		explicit = explicit || a.present(k)
	}
	switch {
	case !a.present("srsPath"):
		return nil, perr.WithField(perr.InvalidArgf("srsPath or inputs is null"), "srsPath")
	case !a.present("inputs") && !explicit:
		return nil, perr.WithField(perr.InvalidArgf("srsPath or inputs is null"), "inputs")
	case a.present("inputs") && explicit:
		return nil, perr.WithField(perr.InvalidArgf("inputs and explicit claims are mutually exclusive"), "inputs")
	}

	if a.present("inputs") {
		in, err := decodeFields[proveJwtInputs](a)
		if err != nil {
			return nil, err
		}
		return ProveJwtRequest{SrsPath: in.SrsPath, Inputs: in.Inputs}, nil
	}

	srs, err := decodeFields[srsOnly](a)
	if err != nil {
		return nil, err
	}
	c, err := decodeFields[ProveJwtClaims](a)
	if err != nil {
		return nil, err
	}
	return ProveJwtRequest{SrsPath: srs.SrsPath, Claims: &c}, nil
}

// decodeFields fills T field by field in declaration order, keyed by json tag
func decodeFields[T any](a Args) (T, error) {
	var out T
	v := reflect.ValueOf(&out).Elem()
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name := argName(f)
		if name == "" {
			continue
		}
		raw, ok := a[name]
		if !ok || raw == nil {
			return out, perr.WithField(perr.InvalidArgf("%s is null", name), name)
		}
		if err := assign(v.Field(i), raw); err != nil {
			return out, perr.WithField(perr.InvalidArgf("%s must be %s", name, err.Error()), name)
		}
		if tag := f.Tag.Get("validate"); tag != "" {
			if err := bind.Var(name, v.Field(i).Interface(), tag); err != nil {
				return out, perr.WithField(perr.InvalidArgf("%s", perr.WireFrom(err).Message), name)
			}
		}
	}
	return out, nil
}

func argName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "-" {
		return ""
	}
	return tag
}

func argNames(t reflect.Type) []string {
	out := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if n := argName(t.Field(i)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// wantError names the expected shape of a mistyped argument
type wantError string

func (w wantError) Error() string { return string(w) }

func assign(dst reflect.Value, raw any) error {
	switch {
	case dst.Kind() == reflect.String:
		s, ok := raw.(string)
		if !ok {
			return wantError("a string")
		}
		dst.SetString(s)
	case dst.Kind() == reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return wantError("a boolean")
		}
		dst.SetBool(b)
	case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		b, ok := toBytes(raw)
		if !ok {
			return wantError("a byte sequence")
		}
		dst.SetBytes(b)
	case dst.Type() == reflect.TypeFor[map[string][]string]():
		m, ok := toStringLists(raw)
		if !ok {
			return wantError("a map of string lists")
		}
		dst.Set(reflect.ValueOf(m))
	default:
		return wantError(fmt.Sprintf("a %s", dst.Type()))
	}
	return nil
}

// toBytes accepts raw bytes, numeric arrays in 0..255 and {"$bytes": base64}
func toBytes(raw any) ([]byte, bool) {
	switch b := raw.(type) {
	case []byte:
		if b == nil {
			return []byte{}, true
		}
		return b, true
	case []any:
		out := make([]byte, len(b))
		for i, e := range b {
			n, ok := toInt(e)
			if !ok || n < 0 || n > math.MaxUint8 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	case []int:
		out := make([]byte, len(b))
		for i, n := range b {
			if n < 0 || n > math.MaxUint8 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	case map[string]any:
		s, ok := b["$bytes"].(string)
		if !ok || len(b) != 1 {
			return nil, false
		}
		out, err := base64.StdEncoding.DecodeString(s)
		return out, err == nil
	}
	return nil, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// toStringLists accepts the map shapes JSON and CBOR decoders produce
func toStringLists(raw any) (map[string][]string, bool) {
	switch m := raw.(type) {
	case map[string][]string:
		return m, true
	case map[string]any:
		out := make(map[string][]string, len(m))
		for k, v := range m {
			l, ok := toStrings(v)
			if !ok {
				return nil, false
			}
			out[k] = l
		}
		return out, true
	case map[any]any:
		out := make(map[string][]string, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			l, ok := toStrings(v)
			if !ok {
				return nil, false
			}
			out[ks] = l
		}
		return out, true
	}
	return nil, false
}

func toStrings(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return l, true
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
