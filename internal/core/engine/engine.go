// Package engine defines the proving engine capability set and the values it exchanges
package engine

import (
	"context"
)

// Engine is the fixed capability set the bridge dispatches to
// Every call blocks until the capability finishes; implementations must be safe for concurrent use
type Engine interface {
	ProveJwt(ctx context.Context, in ProveJwtInput) ([]byte, error)
	VerifyJwt(ctx context.Context, srsPath string, proof []byte) (bool, error)
	VerifyJwtProof(ctx context.Context, in VerifyJwtProofInput) (bool, error)
	SignMessage(ctx context.Context, in SignMessageInput) (SignedMessage, error)
	GenerateEphemeralKey(ctx context.Context) (EphemeralKey, error)
}

// Backend proves and verifies against circuit artifacts found under circuitPath
type Backend interface {
	Prove(ctx context.Context, circuitPath string, inputs map[string][]string) ([]byte, error)

	// Verify checks proof; a non nil publicSignals replaces the signals carried by the proof
	// A cryptographically invalid proof is (false, nil)
	Verify(ctx context.Context, circuitPath string, proof []byte, publicSignals []string) (bool, error)
}

// ProveJwtInput carries exactly one of Inputs or Claims
type ProveJwtInput struct {
	SrsPath string
	Inputs  map[string][]string
	Claims  *JwtClaims
}

// JwtClaims is the explicit ProveJwt shape; the engine derives circuit inputs from it
type JwtClaims struct {
	EphemeralPublicKey string
	EphemeralSalt      string
	EphemeralExpiry    string
	TokenID            string // compact RS256 id token
	Jwk                string // JSON encoded signer key
	Domain             string
}

// VerifyJwtProofInput binds a proof to its expected public values
type VerifyJwtProofInput struct {
	SrsPath                string
	Proof                  []byte
	Domain                 string
	GoogleJwtPubkeyModulus string // base64url modulus from the signer JWK
	EphemeralPubkey        string // decimal
	EphemeralPubkeyExpiry  string // RFC3339
}

// SignMessageInput is a message plus the ephemeral key that signs it
type SignMessageInput struct {
	AnonGroupID           string
	Text                  string
	Internal              bool
	EphemeralPublicKey    string
	EphemeralPrivateKey   string
	EphemeralPubkeyExpiry string
}

// SignedMessage is the payload returned by SignMessage
type SignedMessage struct {
	ID                    string `json:"id"`
	AnonGroupID           string `json:"anonGroupId"`
	AnonGroupProvider     string `json:"anonGroupProvider"`
	Text                  string `json:"text"`
	Timestamp             string `json:"timestamp"`
	Internal              bool   `json:"internal"`
	Likes                 int    `json:"likes"`
	Signature             string `json:"signature"`
	EphemeralPubkey       string `json:"ephemeralPubkey"`
	EphemeralPubkeyExpiry string `json:"ephemeralPubkeyExpiry"`
}

// EphemeralKey is fresh key material; numbers are decimal strings
type EphemeralKey struct {
	PublicKey             string `json:"publicKey"`
	PrivateKey            string `json:"privateKey"`
	Salt                  string `json:"salt"`
	EphemeralPubkeyExpiry string `json:"ephemeralPubkeyExpiry"`
	EphemeralPubkeyHash   string `json:"ephemeralPubkeyHash"`
}

// Jwk is an RSA JSON web key as published by an OAuth provider
type Jwk struct {
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
	Alg string `json:"alg"`
	Kty string `json:"kty"`
	Use string `json:"use"`
}
