// Package service provides group membership and likes on top of proof verification
package service

import (
	"context"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/core/normalize"
	"stealthbridge/internal/modkit/repokit"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/services/membership/domain"
)

// Svc implements bridge.Members
type Svc struct {
	db       repokit.TxRunner
	binder   repokit.Binder[domain.Repo]
	verifier domain.Verifier
	keys     domain.KeyResolver
	now      func() time.Time
}

var _ bridge.Members = (*Svc)(nil)

// New constructs the membership service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.Repo],
	verifier domain.Verifier,
	keys domain.KeyResolver,
) *Svc {
	if db == nil {
		panic("membership.Service requires a non-nil TxRunner")
	}
	if binder == nil {
		panic("membership.Service requires a non-nil Repo binder")
	}
	if verifier == nil || keys == nil {
		panic("membership.Service requires a verifier and a key resolver")
	}
	return &Svc{db: db, binder: binder, verifier: verifier, keys: keys, now: time.Now}
}

// WithClock overrides the time source
func (s *Svc) WithClock(now func() time.Time) *Svc { s.now = now; return s }

// CreateMembership verifies the membership proof and registers the member
func (s *Svc) CreateMembership(ctx context.Context, req bridge.CreateMembershipRequest) (bool, error) {
	if req.Provider != domain.ProviderGoogle {
		return false, perr.WithField(perr.InvalidArgf("unsupported provider %q", req.Provider), "provider")
	}
	group := normalize.GroupID(req.GroupID)
	if group == "" {
		return false, perr.WithField(perr.InvalidArgf("groupId is empty"), "groupId")
	}
	expiry, err := time.Parse(time.RFC3339Nano, req.PubkeyExpiry)
	if err != nil {
		return false, perr.WithField(perr.InvalidArgf("pubkeyExpiry must be an RFC3339 time"), "pubkeyExpiry")
	}
	if !expiry.After(s.now()) {
		return false, perr.WithField(perr.InvalidArgf("pubkeyExpiry has passed"), "pubkeyExpiry")
	}

	modulus, err := s.keys.Modulus(ctx, req.KeyID)
	if err != nil {
		return false, err
	}
	ok, err := s.verifier.VerifyJwtProof(ctx, engine.VerifyJwtProofInput{
		SrsPath:                req.SrsPath,
		Proof:                  req.Proof,
		Domain:                 group,
		GoogleJwtPubkeyModulus: modulus,
		EphemeralPubkey:        req.Pubkey,
		EphemeralPubkeyExpiry:  req.PubkeyExpiry,
	})
	if err != nil {
		return false, err
	}
	if !ok {
		logger.C(ctx).Info().Str("group", group).Msg("membership proof rejected")
		return false, perr.Nativef("invalid proof")
	}

	m := domain.Member{
		Pubkey:       req.Pubkey,
		Provider:     req.Provider,
		GroupID:      group,
		PubkeyExpiry: expiry,
		KeyID:        req.KeyID,
	}
	if err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).UpsertMember(ctx, m)
	}); err != nil {
		return false, storeErr(err, "register member")
	}
	return true, nil
}

// PostLikes sets or clears the member's like and returns the message's like count
func (s *Svc) PostLikes(ctx context.Context, req bridge.PostLikesRequest) (int, error) {
	var n int
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		ok, err := r.IsMember(ctx, req.Pubkey)
		if err != nil {
			return err
		}
		if !ok {
			return perr.WithField(perr.Forbiddenf("pubkey is not a registered member"), "pubkey")
		}
		if err := r.SetLike(ctx, req.Pubkey, req.MessageID, req.Like); err != nil {
			return err
		}
		n, err = r.CountLikes(ctx, req.MessageID)
		return err
	})
	if perr.IsForeignKeyViolation(err) {
		// member removed between the check and the insert
		return 0, perr.WithField(perr.Forbiddenf("pubkey is not a registered member"), "pubkey")
	}
	if err != nil {
		return 0, storeErr(err, "post likes")
	}
	return n, nil
}

func storeErr(err error, msg string) error {
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeDB, msg)
}
