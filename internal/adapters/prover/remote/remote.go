// Package remote delegates proving and verification to a prover server over HTTP
package remote

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/iden3/go-rapidsnark/types"

	"stealthbridge/internal/adapters/prover/native"
	"stealthbridge/internal/core/engine"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/platform/net/client"
)

// Poster is the slice of the HTTP client the backend needs
type Poster interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Backend implements engine.Backend against a prover server
type Backend struct {
	url    string
	client Poster
}

var _ engine.Backend = (*Backend)(nil)

// New returns a backend for the prover server at serverURL
func New(serverURL string, c Poster) *Backend {
	if c == nil {
		c = client.New(client.DefaultOptions)
	}
	return &Backend{url: strings.TrimRight(serverURL, "/"), client: c}
}

// CircuitName is the name the prover server knows a circuit path by: its base name without extension
func CircuitName(circuitPath string) string {
	base := filepath.Base(filepath.Clean(circuitPath))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Prove calls the prover server for proof generation
func (b *Backend) Prove(ctx context.Context, circuitPath string, inputs map[string][]string) ([]byte, error) {
	req, err := json.Marshal(struct {
		Inputs      map[string][]string `json:"inputs"`
		CircuitName string              `json:"circuit_name"`
	}{Inputs: inputs, CircuitName: CircuitName(circuitPath)})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "can't json encode request")
	}

	res, err := b.client.Post(ctx, b.url+"/api/v1/proof/generate", req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "proof generation failed")
	}

	var zkp types.ZKProof
	if err := json.Unmarshal(res, &zkp); err != nil || zkp.Proof == nil {
		logger.C(ctx).Error().Err(err).Msg("failed to unmarshal proof generation result")
		return nil, perr.Nativef("prover server returned no proof")
	}
	return json.Marshal(zkp)
}

// Verify calls the prover server for proof verification
func (b *Backend) Verify(ctx context.Context, circuitPath string, proof []byte, signals []string) (bool, error) {
	zkp, err := native.DecodeProof(proof)
	if err != nil {
		return false, err
	}
	if signals != nil {
		zkp.PubSignals = signals
	}

	req, err := json.Marshal(struct {
		ZKP         types.ZKProof `json:"zkp"`
		CircuitName string        `json:"circuit_name"`
	}{ZKP: zkp, CircuitName: CircuitName(circuitPath)})
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeJSON, "can't json encode request")
	}

	res, err := b.client.Post(ctx, b.url+"/api/v1/proof/verify", req)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeNative, "proof verification failed")
	}
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		logger.C(ctx).Error().Err(err).Msg("failed to unmarshal proof verification result")
		return false, perr.Wrap(err, perr.ErrorCodeNative, "prover server returned no verdict")
	}
	return out.Valid, nil
}
