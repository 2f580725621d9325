package jwtinput

import (
	"bytes"
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"
	"testing"
	"time"

	perr "stealthbridge/internal/platform/errors"
)

func b64(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

func testModulus() string {
	n := bytes.Repeat([]byte{0xc3}, 256)
	return base64.RawURLEncoding.EncodeToString(n)
}

func testToken() (token, header string) {
	header = b64(`{"alg":"RS256","kid":"07b80a365428525f8bf7cd0846d74a8ee4ef3625","typ":"JWT"}`)
	payload := b64(`{"iss":"https://accounts.google.com","azp":"1006701293748-client","aud":"1006701293748-client","sub":"108522077721826439364","hd":"pse.dev","email":"someone@pse.dev","email_verified":true,"nonce":"622618718926420486498127001071856504322492650656283936596477869965459887546"}`)
	sig := base64.RawURLEncoding.EncodeToString(bytes.Repeat([]byte{0x5a}, 256))
	return header + "." + payload + "." + sig, header
}

func TestSplitLimbs(t *testing.T) {
	t.Parallel()

	n := new(big.Int).Lsh(big.NewInt(1), LimbBits)
	n.Add(n, big.NewInt(5))

	limbs := SplitLimbs(n, LimbBits, LimbCount)
	if len(limbs) != LimbCount {
		t.Fatalf("len = %d, want %d", len(limbs), LimbCount)
	}
	if limbs[0] != "5" || limbs[1] != "1" {
		t.Fatalf("low limbs = %v", limbs[:2])
	}
	for i, l := range limbs[2:] {
		if l != "0" {
			t.Fatalf("limb %d = %s, want 0", i+2, l)
		}
	}
}

func TestPartialSHA256_ShortPrefixKeepsIV(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("a"), 100)
	words, rest, err := PartialSHA256(data, 63)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	iv := []uint32{0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a, 0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19}
	for i := range iv {
		if words[i] != iv[i] {
			t.Fatalf("word %d = %#x, want %#x", i, words[i], iv[i])
		}
	}
	if len(rest) != len(data) {
		t.Fatalf("rest len = %d, want %d", len(rest), len(data))
	}
}

func TestPartialSHA256_CutsOnBlockBoundary(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("b"), 200)
	words, rest, err := PartialSHA256(data, 130)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(rest) != 200-128 {
		t.Fatalf("rest len = %d, want %d", len(rest), 72)
	}
	if words[0] == 0x6a09e667 {
		t.Fatalf("state did not advance")
	}

	if _, _, err := PartialSHA256(data, 201); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestGenerate_Precompute(t *testing.T) {
	t.Parallel()

	token, header := testToken()
	in, err := Generate(token, testModulus(), DefaultPrecomputeKeys, MaxSignedDataLen)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	signedLen := len(token[:strings.LastIndex(token, ".")])

	if in.Data != nil {
		t.Fatalf("Data should be nil with precompute keys")
	}
	if in.PartialData == nil || len(in.PartialData.Storage) != MaxSignedDataLen {
		t.Fatalf("partial data not padded: %+v", in.PartialData)
	}
	if in.FullDataLength != signedLen {
		t.Fatalf("full length = %d, want %d", in.FullDataLength, signedLen)
	}
	cut := in.FullDataLength - in.PartialData.Len
	if cut%64 != 0 || cut == 0 {
		t.Fatalf("cut %d not a positive block multiple", cut)
	}
	if cut < len(header)+1 {
		t.Fatalf("cut %d inside header", cut)
	}
	if in.Base64DecodeOffset < 1 || in.Base64DecodeOffset > 4 {
		t.Fatalf("offset = %d", in.Base64DecodeOffset)
	}
	if len(in.PartialHash) != 8 {
		t.Fatalf("partial hash words = %d", len(in.PartialHash))
	}

	m := in.Map()
	for _, k := range []string{
		"partial_data_storage", "partial_data_len", "partial_hash", "full_data_length",
		"base64_decode_offset", "jwt_pubkey_modulus_limbs", "jwt_pubkey_redc_params_limbs", "jwt_signature_limbs",
	} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing input %q", k)
		}
	}
	if got := m["partial_data_len"][0]; got != strconv.Itoa(in.PartialData.Len) {
		t.Fatalf("partial_data_len = %s", got)
	}
}

func TestGenerate_NoPrecompute(t *testing.T) {
	t.Parallel()

	token, header := testToken()
	in, err := Generate(token, testModulus(), nil, MaxSignedDataLen)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if in.Data == nil || in.PartialData != nil {
		t.Fatalf("expected full data block")
	}
	if in.Base64DecodeOffset != len(header)+1 {
		t.Fatalf("offset = %d, want %d", in.Base64DecodeOffset, len(header)+1)
	}
	if _, ok := in.Map()["data_storage"]; !ok {
		t.Fatalf("data_storage missing from map")
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	token, _ := testToken()
	cases := []struct {
		name  string
		token string
		keys  []string
		max   int
	}{
		{"format", "a.b", DefaultPrecomputeKeys, MaxSignedDataLen},
		{"no keys in payload", token, []string{"missing_claim"}, MaxSignedDataLen},
		{"too long", token, nil, 16},
	}
	for _, c := range cases {
		if _, err := Generate(c.token, testModulus(), c.keys, c.max); err == nil {
			t.Fatalf("%s: expected error", c.name)
		} else if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
			t.Fatalf("%s: code = %v", c.name, perr.CodeOf(err))
		}
	}
}

func TestPublicSignals_Layout(t *testing.T) {
	t.Parallel()

	n, _ := Modulus(testModulus())
	pub := big.NewInt(80)
	exp := time.Date(2025, 5, 7, 9, 7, 57, 379_000_000, time.UTC)

	sig, err := PublicSignals(n, "pse.dev", pub, exp)
	if err != nil {
		t.Fatalf("PublicSignals: %v", err)
	}
	if len(sig) != LimbCount+DomainSize+3 {
		t.Fatalf("len = %d", len(sig))
	}
	if sig[LimbCount] != strconv.Itoa('p') {
		t.Fatalf("first domain byte = %s", sig[LimbCount])
	}
	if sig[LimbCount+7] != "0" {
		t.Fatalf("domain padding = %s", sig[LimbCount+7])
	}
	if sig[LimbCount+DomainSize] != "7" {
		t.Fatalf("domain len = %s", sig[LimbCount+DomainSize])
	}
	if sig[LimbCount+DomainSize+1] != "10" {
		t.Fatalf("shifted pubkey = %s", sig[LimbCount+DomainSize+1])
	}
	if sig[LimbCount+DomainSize+2] != strconv.FormatInt(exp.Unix(), 10) {
		t.Fatalf("expiry = %s", sig[LimbCount+DomainSize+2])
	}

	if _, err := PublicSignals(n, strings.Repeat("x", DomainSize+1), pub, exp); err == nil {
		t.Fatalf("expected error for long domain")
	}
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	if _, err := ParseDecimal("12x", "pubkey"); err == nil {
		t.Fatalf("expected decimal error")
	}
	if n, err := ParseDecimal(" 42 ", "pubkey"); err != nil || n.Int64() != 42 {
		t.Fatalf("ParseDecimal = %v, %v", n, err)
	}
	if _, err := ParseExpiry("tomorrow"); err == nil {
		t.Fatalf("expected datetime error")
	}
	if ts, err := ParseExpiry("2025-05-07T09:07:57.379Z"); err != nil || ts.Unix() != 1746608877 {
		t.Fatalf("ParseExpiry = %v, %v", ts, err)
	}
	if _, err := Modulus(""); err == nil {
		t.Fatalf("expected empty modulus error")
	}
}
