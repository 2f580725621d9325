// Package domain holds membership types and ports
package domain

import (
	"context"
	"time"

	"stealthbridge/internal/core/engine"
)

// ProviderGoogle is the only anonymous group provider
const ProviderGoogle = "google-oauth"

// Member is a registered ephemeral key of an anonymous group
type Member struct {
	Pubkey       string // decimal
	Provider     string
	GroupID      string // canonical, see normalize.GroupID
	PubkeyExpiry time.Time
	KeyID        string
}

// Repo is the storage surface bound to one transaction
type Repo interface {
	UpsertMember(ctx context.Context, m Member) error
	IsMember(ctx context.Context, pubkey string) (bool, error)
	SetLike(ctx context.Context, pubkey, messageID string, like bool) error
	CountLikes(ctx context.Context, messageID string) (int, error)
}

// Verifier checks a membership proof against its public values
type Verifier interface {
	VerifyJwtProof(ctx context.Context, in engine.VerifyJwtProofInput) (bool, error)
}

// KeyResolver yields the base64url modulus of the provider key that signed the token
type KeyResolver interface {
	Modulus(ctx context.Context, kid string) (string, error)
}
