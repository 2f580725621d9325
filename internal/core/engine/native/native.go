// Package native implements the proving engine on a Groth16 backend plus local ed25519 keys
package native

import (
	"context"
	"encoding/json"
	"maps"
	"strings"
	"time"

	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/core/ephemeral"
	"stealthbridge/internal/core/jwtinput"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
)

// Engine implements engine.Engine
type Engine struct {
	backend engine.Backend
	keys    *ephemeral.Keys
}

var _ engine.Engine = (*Engine)(nil)

// New wires an engine; nil keys uses ephemeral.New
func New(b engine.Backend, keys *ephemeral.Keys) *Engine {
	if keys == nil {
		keys = ephemeral.New()
	}
	return &Engine{backend: b, keys: keys}
}

// ProveJwt proves either the supplied inputs or inputs derived from the explicit claims
func (e *Engine) ProveJwt(ctx context.Context, in engine.ProveJwtInput) ([]byte, error) {
	inputs := in.Inputs
	if in.Claims != nil {
		var err error
		if inputs, err = ClaimsInputs(*in.Claims); err != nil {
			return nil, err
		}
	}
	if inputs == nil {
		return nil, perr.InvalidArgf("srsPath or inputs is null")
	}

	start := time.Now()
	proof, err := e.backend.Prove(ctx, in.SrsPath, inputs)
	logger.C(ctx).Debug().Dur("elapsed", time.Since(start)).Int("bytes", len(proof)).Msg("jwt proof generated")
	return proof, err
}

// VerifyJwt verifies a proof with the public signals it carries
func (e *Engine) VerifyJwt(ctx context.Context, srsPath string, proof []byte) (bool, error) {
	start := time.Now()
	ok, err := e.backend.Verify(ctx, srsPath, proof, nil)
	logger.C(ctx).Debug().Dur("elapsed", time.Since(start)).Bool("verdict", ok).Msg("jwt proof verified")
	return ok, err
}

// VerifyJwtProof verifies a proof against recomputed public signals
func (e *Engine) VerifyJwtProof(ctx context.Context, in engine.VerifyJwtProofInput) (bool, error) {
	modulus, err := jwtinput.Modulus(in.GoogleJwtPubkeyModulus)
	if err != nil {
		return false, err
	}
	pub, err := jwtinput.ParseDecimal(in.EphemeralPubkey, "ephemeralPubkey")
	if err != nil {
		return false, err
	}
	exp, err := jwtinput.ParseExpiry(in.EphemeralPubkeyExpiry)
	if err != nil {
		return false, err
	}
	signals, err := jwtinput.PublicSignals(modulus, in.Domain, pub, exp)
	if err != nil {
		return false, err
	}
	return e.backend.Verify(ctx, in.SrsPath, in.Proof, signals)
}

// SignMessage signs with the caller's ephemeral key
func (e *Engine) SignMessage(_ context.Context, in engine.SignMessageInput) (engine.SignedMessage, error) {
	return e.keys.Sign(in)
}

// GenerateEphemeralKey returns fresh key material
func (e *Engine) GenerateEphemeralKey(_ context.Context) (engine.EphemeralKey, error) {
	return e.keys.Generate()
}

// ClaimsInputs expands the explicit ProveJwt shape into circuit inputs
func ClaimsInputs(c engine.JwtClaims) (map[string][]string, error) {
	var jwk engine.Jwk
	if err := json.Unmarshal([]byte(c.Jwk), &jwk); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "jwt is not a JSON web key")
	}
	if jwk.Kty != "" && !strings.EqualFold(jwk.Kty, "RSA") {
		return nil, perr.InvalidArgf("unsupported key type %q", jwk.Kty)
	}

	ci, err := jwtinput.Generate(c.TokenID, jwk.N, jwtinput.DefaultPrecomputeKeys, jwtinput.MaxSignedDataLen)
	if err != nil {
		return nil, err
	}
	domain, err := jwtinput.DomainInputs(c.Domain)
	if err != nil {
		return nil, err
	}

	m := ci.Map()
	maps.Copy(m, domain)
	m["ephemeral_pubkey"] = []string{c.EphemeralPublicKey}
	m["ephemeral_pubkey_salt"] = []string{c.EphemeralSalt}
	m["ephemeral_pubkey_expiry"] = []string{c.EphemeralExpiry}
	return m, nil
}
