// Package native proves and verifies Groth16 circuits in process with rapidsnark
package native

import (
	"context"
	"encoding/json"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"
	"github.com/iden3/go-rapidsnark/witness/v2"
	"github.com/iden3/go-rapidsnark/witness/wazero"
	"github.com/patrickmn/go-cache"

	"stealthbridge/internal/core/engine"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
)

// artifact names inside a circuit directory
const (
	WasmFile            = "circuit.wasm"
	ProvingKeyFile      = "circuit_final.zkey"
	VerificationKeyFile = "verification_key.json"
)

const (
	defaultTTL   = 60 * time.Minute
	cleanupEvery = 1 * time.Minute
)

// Backend implements engine.Backend on rapidsnark
type Backend struct {
	artifacts *cache.Cache
	read      func(string) ([]byte, error)
	base      string
}

var _ engine.Backend = (*Backend)(nil)

// New returns a backend resolving relative circuit paths under base and caching artifacts for ttl
func New(base string, ttl time.Duration, read func(string) ([]byte, error)) *Backend {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Backend{artifacts: cache.New(ttl, cleanupEvery), read: read, base: base}
}

func (b *Backend) dir(circuitPath string) string {
	if filepath.IsAbs(circuitPath) || b.base == "" {
		return filepath.Clean(circuitPath)
	}
	return filepath.Join(b.base, circuitPath)
}

func (b *Backend) load(circuitPath, name string) ([]byte, error) {
	path := filepath.Join(b.dir(circuitPath), name)
	if v, ok := b.artifacts.Get(path); ok {
		return v.([]byte), nil
	}
	raw, err := b.read(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNative, "load circuit artifact %s", path)
	}
	b.artifacts.SetDefault(path, raw)
	return raw, nil
}

// Prove computes the witness for inputs and returns the JSON encoded proof
func (b *Backend) Prove(ctx context.Context, circuitPath string, inputs map[string][]string) ([]byte, error) {
	wasm, err := b.load(circuitPath, WasmFile)
	if err != nil {
		return nil, err
	}
	calc, err := witness.NewCalculator(wasm, witness.WithWasmEngine(wazero.NewCircom2WZWitnessCalculator))
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("can't create witness calculator")
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "can't create witness calculator")
	}

	raw, err := json.Marshal(inputs)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode circuit inputs")
	}
	parsed, err := witness.ParseInputs(raw)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "parse circuit inputs")
	}
	wtns, err := calc.CalculateWTNSBin(parsed, true)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("can't generate witnesses")
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "can't generate witnesses")
	}

	zkey, err := b.load(circuitPath, ProvingKeyFile)
	if err != nil {
		return nil, err
	}
	proof, err := prover.Groth16Prover(zkey, wtns)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("can't create prover")
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "can't create prover")
	}
	return json.Marshal(proof)
}

// pairingRejected is the verifier error for a proof that fails the pairing check
const pairingRejected = "invalid proofs"

// Verify checks proof against the circuit's verification key; signals override the proof's own.
// Only a failed pairing check is (false, nil); a bad key or signal set is a native error.
func (b *Backend) Verify(ctx context.Context, circuitPath string, proof []byte, signals []string) (bool, error) {
	zkp, err := DecodeProof(proof)
	if err != nil {
		return false, err
	}
	if signals != nil {
		zkp.PubSignals = signals
	}
	vk, err := b.load(circuitPath, VerificationKeyFile)
	if err != nil {
		return false, err
	}
	if err := checkKey(vk, zkp.PubSignals); err != nil {
		return false, err
	}
	if err := verifier.VerifyGroth16(zkp, vk); err != nil {
		if err.Error() != pairingRejected {
			return false, perr.Wrap(err, perr.ErrorCodeNative, "groth16 verify")
		}
		logger.C(ctx).Debug().Msg("groth16 pairing check failed")
		return false, nil
	}
	return true, nil
}

type verificationKey struct {
	Alpha []string   `json:"vk_alpha_1"`
	Beta  [][]string `json:"vk_beta_2"`
	Gamma [][]string `json:"vk_gamma_2"`
	Delta [][]string `json:"vk_delta_2"`
	IC    [][]string `json:"IC"`
}

// checkKey rejects what VerifyGroth16 would refuse before reaching the pairing check
func checkKey(raw []byte, signals []string) error {
	var vk verificationKey
	if err := json.Unmarshal(raw, &vk); err != nil {
		return perr.Wrap(err, perr.ErrorCodeNative, "verification key is not valid json")
	}
	if !g1(vk.Alpha) || !g2(vk.Beta) || !g2(vk.Gamma) || !g2(vk.Delta) || len(vk.IC) == 0 {
		return perr.Nativef("verification key is incomplete")
	}
	for _, p := range vk.IC {
		if !g1(p) {
			return perr.Nativef("verification key is incomplete")
		}
	}
	if len(signals)+1 != len(vk.IC) {
		return perr.Nativef("circuit expects %d public signals, got %d", len(vk.IC)-1, len(signals))
	}
	for i, s := range signals {
		n, ok := signal(s)
		if !ok {
			return perr.Nativef("public signal %d is not an integer", i)
		}
		if n.Sign() < 0 || n.Cmp(constants.Q) >= 0 {
			return perr.Nativef("public signal %d is outside the scalar field", i)
		}
	}
	return nil
}

func signal(s string) (*big.Int, bool) {
	if h, ok := strings.CutPrefix(s, "0x"); ok {
		return new(big.Int).SetString(h, 16)
	}
	return new(big.Int).SetString(s, 10)
}

// g1 and g2 check the projective coordinate shapes the verifier indexes into
func g1(p []string) bool { return len(p) > 2 }

func g2(p [][]string) bool { return len(p) > 2 && len(p[0]) > 1 && len(p[1]) > 1 }

// DecodeProof parses the JSON proof format Prove emits
func DecodeProof(proof []byte) (types.ZKProof, error) {
	var zkp types.ZKProof
	if err := json.Unmarshal(proof, &zkp); err != nil {
		return zkp, perr.Wrap(err, perr.ErrorCodeNative, "proof is not a groth16 proof")
	}
	if zkp.Proof == nil || !g1(zkp.Proof.A) || !g2(zkp.Proof.B) || !g1(zkp.Proof.C) {
		return zkp, perr.Nativef("proof is not a groth16 proof")
	}
	return zkp, nil
}
