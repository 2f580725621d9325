package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "stealthbridge/internal/platform/errors"
)

// Bearer returns the token of a case-insensitive "Bearer <token>" Authorization header
func Bearer(r *http.Request) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	tok = strings.TrimSpace(tok)
	if !ok || !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return tok, nil
}

// KeyAuth maps bearer API keys to front-end names
type KeyAuth map[string]string

// ParseKeys reads "name:key" pairs separated by commas; blank input yields nil
func ParseKeys(spec string) (KeyAuth, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	out := KeyAuth{}
	for pair := range strings.SplitSeq(spec, ",") {
		name, key, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || key == "" {
			return nil, perrs.InvalidArgf("malformed api key entry %q", pair)
		}
		if prev, dup := out[key]; dup && prev != name {
			return nil, perrs.InvalidArgf("api key shared by %q and %q", prev, name)
		}
		out[key] = name
	}
	return out, nil
}

// Parse implements middleware.AuthPort
func (k KeyAuth) Parse(r *http.Request) (string, error) {
	tok, err := Bearer(r)
	if err != nil {
		return "", err
	}
	return k.Resolve(tok)
}

// Resolve finds the front-end owning tok, comparing every key in constant time
func (k KeyAuth) Resolve(tok string) (string, error) {
	caller := ""
	for key, name := range k {
		if subtle.ConstantTimeCompare([]byte(key), []byte(tok)) == 1 {
			caller = name
		}
	}
	if caller == "" {
		return "", perrs.Unauthorizedf("unknown api key")
	}
	return caller, nil
}
