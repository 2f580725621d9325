// Package repo provides Postgres bindings for domain.Repo
package repo

import (
	"context"

	"stealthbridge/internal/modkit/repokit"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/store"
	"stealthbridge/internal/services/membership/domain"
)

// Schema creates the membership tables when missing
const Schema = `
CREATE TABLE IF NOT EXISTS members (
	pubkey        NUMERIC PRIMARY KEY,
	provider      TEXT NOT NULL,
	group_id      TEXT NOT NULL,
	pubkey_expiry TIMESTAMPTZ NOT NULL,
	key_id        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS members_group_idx ON members (provider, group_id);
CREATE TABLE IF NOT EXISTS message_likes (
	message_id TEXT NOT NULL,
	pubkey     NUMERIC NOT NULL REFERENCES members (pubkey) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (message_id, pubkey)
);`

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// Migrate applies Schema
func Migrate(ctx context.Context, tx repokit.TxRunner) error {
	return repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
		_, err := store.Exec(ctx, q, Schema)
		return perr.FromPostgres(err, "membership schema")
	})
}

// UpsertMember registers m; a repeated registration refreshes expiry and key id
func (r *queries) UpsertMember(ctx context.Context, m domain.Member) error {
	err := store.ExecOne(ctx, r.q, `
		INSERT INTO members (pubkey, provider, group_id, pubkey_expiry, key_id)
		VALUES ($1::numeric, $2, $3, $4, $5)
		ON CONFLICT (pubkey) DO UPDATE
		SET provider = EXCLUDED.provider,
		    group_id = EXCLUDED.group_id,
		    pubkey_expiry = EXCLUDED.pubkey_expiry,
		    key_id = EXCLUDED.key_id,
		    updated_at = now()`,
		m.Pubkey, m.Provider, m.GroupID, m.PubkeyExpiry.UTC(), m.KeyID,
	)
	return perr.FromPostgres(err, "upsert member")
}

// IsMember reports whether pubkey is registered
func (r *queries) IsMember(ctx context.Context, pubkey string) (bool, error) {
	ok, err := store.Scalar[bool](ctx, r.q,
		`SELECT EXISTS (SELECT 1 FROM members WHERE pubkey = $1::numeric)`, pubkey)
	return ok, perr.FromPostgres(err, "member lookup")
}

// SetLike adds or removes one like; both directions are idempotent
func (r *queries) SetLike(ctx context.Context, pubkey, messageID string, like bool) error {
	sql := `DELETE FROM message_likes WHERE message_id = $1 AND pubkey = $2::numeric`
	if like {
		sql = `INSERT INTO message_likes (message_id, pubkey) VALUES ($1, $2::numeric)
			ON CONFLICT (message_id, pubkey) DO NOTHING`
	}
	_, err := store.Exec(ctx, r.q, sql, messageID, pubkey)
	return perr.FromPostgres(err, "set like")
}

// CountLikes returns the number of members liking messageID
func (r *queries) CountLikes(ctx context.Context, messageID string) (int, error) {
	n, err := store.Scalar[int](ctx, r.q,
		`SELECT count(*)::int FROM message_likes WHERE message_id = $1`, messageID)
	return n, perr.FromPostgres(err, "count likes")
}
