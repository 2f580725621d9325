// Package jwtinput derives JWT circuit inputs and verification public signals
//
// Signed data is header.payload of a compact RS256 token. When precompute keys are given the
// SHA-256 state over full 64 byte blocks preceding the first matching claim is computed here and
// only the remainder is handed to the circuit.
package jwtinput

import (
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"
	"time"

	perr "stealthbridge/internal/platform/errors"
)

const (
	// LimbBits is the width of one RSA limb
	LimbBits = 120
	// LimbCount is the number of limbs for a 2048 bit value
	LimbCount = 18
	// MaxSignedDataLen bounds the signed data the circuit accepts
	MaxSignedDataLen = 640
	// DomainSize is the fixed width of the domain field
	DomainSize = 64

	rsaBits = 2048
)

// DefaultPrecomputeKeys are the payload claims the circuit reads
var DefaultPrecomputeKeys = []string{"email", "email_verified", "nonce"}

// Storage is a zero padded byte block plus the length of its meaningful prefix
type Storage struct {
	Storage []byte
	Len     int
}

// CircuitInputs holds either Data or the partial SHA fields
type CircuitInputs struct {
	Data               *Storage
	Base64DecodeOffset int
	PubkeyModulusLimbs []string
	RedcParamsLimbs    []string
	SignatureLimbs     []string
	PartialData        *Storage
	PartialHash        []uint32
	FullDataLength     int
}

// Generate builds circuit inputs for token signed by the RSA key with base64url modulus
func Generate(token, modulus string, precomputeKeys []string, maxSignedDataLen int) (CircuitInputs, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return CircuitInputs{}, perr.InvalidArgf("invalid jwt format")
	}
	header, payload, sig := parts[0], parts[1], parts[2]
	signed := []byte(header + "." + payload)

	sigBytes, err := decodeB64URL(sig)
	if err != nil {
		return CircuitInputs{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "jwt signature")
	}
	n, err := Modulus(modulus)
	if err != nil {
		return CircuitInputs{}, err
	}
	redc := new(big.Int).Lsh(big.NewInt(1), 2*rsaBits+4)
	redc.Div(redc, n)

	in := CircuitInputs{
		PubkeyModulusLimbs: SplitLimbs(n, LimbBits, LimbCount),
		RedcParamsLimbs:    SplitLimbs(redc, LimbBits, LimbCount),
		SignatureLimbs:     SplitLimbs(new(big.Int).SetBytes(sigBytes), LimbBits, LimbCount),
	}

	if len(precomputeKeys) == 0 {
		if len(signed) > maxSignedDataLen {
			return CircuitInputs{}, perr.InvalidArgf("signed data too long")
		}
		in.Data = &Storage{Storage: pad(signed, maxSignedDataLen), Len: len(signed)}
		in.Base64DecodeOffset = len(header) + 1
		return in, nil
	}

	claims, err := decodeB64URL(payload)
	if err != nil {
		return CircuitInputs{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "jwt payload")
	}
	idx := -1
	for _, k := range precomputeKeys {
		if i := strings.Index(string(claims), `"`+k+`":`); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return CircuitInputs{}, perr.InvalidArgf("none of the keys found in payload")
	}

	start := len(header) + idx*4/3 + 1
	hash, rest, err := PartialSHA256(signed, start)
	if err != nil {
		return CircuitInputs{}, err
	}
	if len(rest) > maxSignedDataLen {
		return CircuitInputs{}, perr.InvalidArgf("remaining data too long")
	}

	precomputed := len(signed) - len(rest) - (len(header) + 1)
	if precomputed < 0 {
		return CircuitInputs{}, perr.InvalidArgf("jwt header exceeds precompute cutoff")
	}

	in.PartialData = &Storage{Storage: pad(rest, maxSignedDataLen), Len: len(rest)}
	in.PartialHash = hash
	in.FullDataLength = len(signed)
	in.Base64DecodeOffset = 4 - precomputed%4
	return in, nil
}

// Map renders the inputs with the circuit's signal names
func (c CircuitInputs) Map() map[string][]string {
	m := map[string][]string{
		"base64_decode_offset":         {strconv.Itoa(c.Base64DecodeOffset)},
		"jwt_pubkey_modulus_limbs":     c.PubkeyModulusLimbs,
		"jwt_pubkey_redc_params_limbs": c.RedcParamsLimbs,
		"jwt_signature_limbs":          c.SignatureLimbs,
	}
	if c.Data != nil {
		m["data_storage"] = byteStrings(c.Data.Storage)
		m["data_len"] = []string{strconv.Itoa(c.Data.Len)}
	}
	if c.PartialData != nil {
		m["partial_data_storage"] = byteStrings(c.PartialData.Storage)
		m["partial_data_len"] = []string{strconv.Itoa(c.PartialData.Len)}
		hash := make([]string, len(c.PartialHash))
		for i, w := range c.PartialHash {
			hash[i] = strconv.FormatUint(uint64(w), 10)
		}
		m["partial_hash"] = hash
		m["full_data_length"] = []string{strconv.Itoa(c.FullDataLength)}
	}
	return m
}

// EncodeDomain zero pads domain to size bytes
func EncodeDomain(domain string, size int) (Storage, error) {
	if len(domain) > size {
		return Storage{}, perr.InvalidArgf("domain longer than %d bytes", size)
	}
	return Storage{Storage: pad([]byte(domain), size), Len: len(domain)}, nil
}

// DomainInputs renders the domain signals
func DomainInputs(domain string) (map[string][]string, error) {
	d, err := EncodeDomain(domain, DomainSize)
	if err != nil {
		return nil, err
	}
	return map[string][]string{
		"domain_storage": byteStrings(d.Storage),
		"domain_len":     {strconv.Itoa(d.Len)},
	}, nil
}

// PublicSignals lists the public values a JWT proof commits to, in circuit order
// modulus limbs, padded domain bytes, domain length, pubkey >> 3, expiry epoch seconds
func PublicSignals(modulus *big.Int, domain string, ephemeralPubkey *big.Int, expiry time.Time) ([]string, error) {
	d, err := EncodeDomain(domain, DomainSize)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, LimbCount+DomainSize+3)
	out = append(out, SplitLimbs(modulus, LimbBits, LimbCount)...)
	out = append(out, byteStrings(d.Storage)...)
	out = append(out, strconv.Itoa(d.Len))
	out = append(out, new(big.Int).Rsh(ephemeralPubkey, 3).String())
	out = append(out, strconv.FormatInt(expiry.Unix(), 10))
	return out, nil
}

// SplitLimbs splits n into count limbs of bits each, least significant first
func SplitLimbs(n *big.Int, bits, count int) []string {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	out := make([]string, count)
	for i := range out {
		limb := new(big.Int).Rsh(n, uint(i*bits))
		out[i] = limb.And(limb, mask).String()
	}
	return out
}

// Modulus decodes a base64url JWK modulus
func Modulus(b64 string) (*big.Int, error) {
	raw, err := decodeB64URL(b64)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "jwk modulus")
	}
	if len(raw) == 0 {
		return nil, perr.InvalidArgf("jwk modulus is empty")
	}
	return new(big.Int).SetBytes(raw), nil
}

// ParseDecimal parses a non negative base 10 integer
func ParseDecimal(s, name string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 {
		return nil, perr.InvalidArgf("%s is not a decimal integer", name)
	}
	return n, nil
}

// ParseExpiry parses an RFC3339 timestamp
func ParseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid datetime format")
	}
	return t, nil
}

func decodeB64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func pad(b []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, b)
	return out
}

func byteStrings(b []byte) []string {
	out := make([]string, len(b))
	for i, v := range b {
		out[i] = strconv.Itoa(int(v))
	}
	return out
}
