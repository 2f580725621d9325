package bridge

import (
	"stealthbridge/internal/core/engine"
)

// Request is a decoded call; the variants below are the complete set
type Request interface {
	method() Method
}

// ProveJwtRequest carries exactly one of Inputs or Claims
type ProveJwtRequest struct {
	SrsPath string
	Inputs  map[string][]string
	Claims  *ProveJwtClaims
}

// ProveJwtClaims is the explicit ProveJwt argument set
type ProveJwtClaims struct {
	EphemeralPublicKey string `json:"ephemeralPublicKey" validate:"number"`
	EphemeralSalt      string `json:"ephemeralSalt" validate:"number"`
	EphemeralExpiry    string `json:"ephemeralExpiry" validate:"number"`
	TokenID            string `json:"tokenId"`
	Jwt                string `json:"jwt"`
	Domain             string `json:"domain"`
}

type proveJwtInputs struct {
	SrsPath string              `json:"srsPath"`
	Inputs  map[string][]string `json:"inputs"`
}

type srsOnly struct {
	SrsPath string `json:"srsPath"`
}

// VerifyJwtRequest verifies a proof with its own public signals
type VerifyJwtRequest struct {
	SrsPath string `json:"srsPath"`
	Proof   []byte `json:"proof"`
}

// VerifyJwtProofRequest verifies a proof against caller supplied public values
type VerifyJwtProofRequest struct {
	SrsPath                string `json:"srsPath"`
	Proof                  []byte `json:"proof"`
	Domain                 string `json:"domain"`
	GoogleJwtPubkeyModulus string `json:"googleJwtPubkeyModulus"`
	EphemeralPubkey        string `json:"ephemeralPubkey" validate:"number"`
	EphemeralPubkeyExpiry  string `json:"ephemeralPubkeyExpiry"`
}

// SignMessageRequest signs a group message with an ephemeral key
type SignMessageRequest struct {
	AnonGroupID           string `json:"anonGroupId"`
	Text                  string `json:"text"`
	Internal              bool   `json:"internal"`
	EphemeralPublicKey    string `json:"ephemeralPublicKey" validate:"number"`
	EphemeralPrivateKey   string `json:"ephemeralPrivateKey" validate:"number"`
	EphemeralPubkeyExpiry string `json:"ephemeralPubkeyExpiry"`
}

// GenerateEphemeralKeyRequest takes no arguments
type GenerateEphemeralKeyRequest struct{}

// CreateMembershipRequest registers an ephemeral key as a member of a group
type CreateMembershipRequest struct {
	Provider     string `json:"provider"`
	GroupID      string `json:"groupId"`
	Pubkey       string `json:"pubkey" validate:"number"`
	PubkeyExpiry string `json:"pubkeyExpiry"`
	Proof        []byte `json:"proof"`
	KeyID        string `json:"keyId"`
	SrsPath      string `json:"srsPath"`
}

// PostLikesRequest sets or clears a member's like on a message
type PostLikesRequest struct {
	Pubkey    string `json:"pubkey" validate:"number"`
	MessageID string `json:"messageId" validate:"hexadecimal,max=64"`
	Like      bool   `json:"like"`
}

func (ProveJwtRequest) method() Method             { return MethodProveJwt }
func (VerifyJwtRequest) method() Method            { return MethodVerifyJwt }
func (VerifyJwtProofRequest) method() Method       { return MethodVerifyJwtProof }
func (SignMessageRequest) method() Method          { return MethodSignMessage }
func (GenerateEphemeralKeyRequest) method() Method { return MethodGenerateEphemeralKey }
func (CreateMembershipRequest) method() Method     { return MethodCreateMembership }
func (PostLikesRequest) method() Method            { return MethodPostLikes }

func (r ProveJwtRequest) input() engine.ProveJwtInput {
	in := engine.ProveJwtInput{SrsPath: r.SrsPath, Inputs: r.Inputs}
	if c := r.Claims; c != nil {
		in.Claims = &engine.JwtClaims{
			EphemeralPublicKey: c.EphemeralPublicKey,
			EphemeralSalt:      c.EphemeralSalt,
			EphemeralExpiry:    c.EphemeralExpiry,
			TokenID:            c.TokenID,
			Jwk:                c.Jwt,
			Domain:             c.Domain,
		}
	}
	return in
}

func (r VerifyJwtProofRequest) input() engine.VerifyJwtProofInput {
	return engine.VerifyJwtProofInput{
		SrsPath:                r.SrsPath,
		Proof:                  r.Proof,
		Domain:                 r.Domain,
		GoogleJwtPubkeyModulus: r.GoogleJwtPubkeyModulus,
		EphemeralPubkey:        r.EphemeralPubkey,
		EphemeralPubkeyExpiry:  r.EphemeralPubkeyExpiry,
	}
}

func (r SignMessageRequest) input() engine.SignMessageInput {
	return engine.SignMessageInput{
		AnonGroupID:           r.AnonGroupID,
		Text:                  r.Text,
		Internal:              r.Internal,
		EphemeralPublicKey:    r.EphemeralPublicKey,
		EphemeralPrivateKey:   r.EphemeralPrivateKey,
		EphemeralPubkeyExpiry: r.EphemeralPubkeyExpiry,
	}
}
