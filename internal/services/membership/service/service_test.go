package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/modkit/repokit"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/testkit"
	"stealthbridge/internal/services/membership/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type memRepo struct {
	mu      sync.Mutex
	members map[string]domain.Member
	likes   map[string]map[string]bool
	likeErr error
}

func newMemRepo() *memRepo {
	return &memRepo{members: map[string]domain.Member{}, likes: map[string]map[string]bool{}}
}

func (r *memRepo) UpsertMember(_ context.Context, m domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.Pubkey] = m
	return nil
}

func (r *memRepo) IsMember(_ context.Context, pubkey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[pubkey]
	return ok, nil
}

func (r *memRepo) SetLike(_ context.Context, pubkey, msg string, like bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.likeErr != nil {
		return r.likeErr
	}
	if r.likes[msg] == nil {
		r.likes[msg] = map[string]bool{}
	}
	if like {
		r.likes[msg][pubkey] = true
	} else {
		delete(r.likes[msg], pubkey)
	}
	return nil
}

func (r *memRepo) CountLikes(_ context.Context, msg string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.likes[msg]), nil
}

type memBinder struct{ r *memRepo }

func (b memBinder) Bind(repokit.Queryer) domain.Repo { return b.r }

// fakeTx runs fn with a nil Queryer; memBinder ignores it
type fakeTx struct {
	repokit.Queryer
	err error
}

func (f fakeTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeVerifier struct {
	ok   bool
	err  error
	last engine.VerifyJwtProofInput
}

func (v *fakeVerifier) VerifyJwtProof(_ context.Context, in engine.VerifyJwtProofInput) (bool, error) {
	v.last = in
	return v.ok, v.err
}

type fakeKeys map[string]string

func (k fakeKeys) Modulus(_ context.Context, kid string) (string, error) {
	n, ok := k[kid]
	if !ok {
		return "", perr.NotFoundf("signer key %q not found", kid)
	}
	return n, nil
}

var now = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func newSvc(v *fakeVerifier, repo *memRepo) *Svc {
	return New(fakeTx{}, memBinder{repo}, v, fakeKeys{"kid1": "modulus"}).WithClock(func() time.Time { return now })
}

func request() bridge.CreateMembershipRequest {
	return bridge.CreateMembershipRequest{
		Provider:     domain.ProviderGoogle,
		GroupID:      " PSE.dev ",
		Pubkey:       "12345",
		PubkeyExpiry: "2025-05-07T09:07:57.379Z",
		Proof:        []byte("{}"),
		KeyID:        "kid1",
		SrsPath:      "jwt",
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	t.Parallel()
	testkit.MustPanic(t, func() { New(nil, memBinder{}, &fakeVerifier{}, fakeKeys{}) })
	testkit.MustPanic(t, func() { New(fakeTx{}, nil, &fakeVerifier{}, fakeKeys{}) })
	testkit.MustPanic(t, func() { New(fakeTx{}, memBinder{}, nil, fakeKeys{}) })
}

func TestCreateMembership_RegistersVerifiedMember(t *testing.T) {
	t.Parallel()
	v := &fakeVerifier{ok: true}
	repo := newMemRepo()

	ok, err := newSvc(v, repo).CreateMembership(context.Background(), request())
	if err != nil || !ok {
		t.Fatalf("CreateMembership = %v, %v", ok, err)
	}
	want := engine.VerifyJwtProofInput{
		SrsPath: "jwt", Proof: []byte("{}"), Domain: "pse.dev", GoogleJwtPubkeyModulus: "modulus",
		EphemeralPubkey: "12345", EphemeralPubkeyExpiry: "2025-05-07T09:07:57.379Z",
	}
	if v.last.Domain != want.Domain || v.last.GoogleJwtPubkeyModulus != want.GoogleJwtPubkeyModulus ||
		v.last.EphemeralPubkey != want.EphemeralPubkey || v.last.SrsPath != want.SrsPath {
		t.Fatalf("verifier saw %+v", v.last)
	}
	m := repo.members["12345"]
	if m.GroupID != "pse.dev" || m.KeyID != "kid1" || m.PubkeyExpiry.Year() != 2025 {
		t.Fatalf("member = %+v", m)
	}
}

func TestCreateMembership_InvalidProof(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	_, err := newSvc(&fakeVerifier{ok: false}, repo).CreateMembership(context.Background(), request())
	if !perr.IsCode(err, perr.ErrorCodeNative) {
		t.Fatalf("err = %v, want native", err)
	}
	testkit.MustContain(t, err.Error(), "invalid proof")
	if len(repo.members) != 0 {
		t.Fatalf("member stored after a rejected proof")
	}
}

func TestCreateMembership_RejectsInput(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		mut   func(*bridge.CreateMembershipRequest)
		field string
	}{
		{"provider", func(r *bridge.CreateMembershipRequest) { r.Provider = "github" }, "provider"},
		{"group", func(r *bridge.CreateMembershipRequest) { r.GroupID = " \u200b " }, "groupId"},
		{"expiry format", func(r *bridge.CreateMembershipRequest) { r.PubkeyExpiry = "tomorrow" }, "pubkeyExpiry"},
		{"expired", func(r *bridge.CreateMembershipRequest) { r.PubkeyExpiry = "2024-01-01T00:00:00Z" }, "pubkeyExpiry"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			v := &fakeVerifier{ok: true}
			req := request()
			c.mut(&req)
			_, err := newSvc(v, newMemRepo()).CreateMembership(context.Background(), req)
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeInvalidArgument || e.Field() != c.field {
				t.Fatalf("err = %v, want invalid argument on %s", err, c.field)
			}
			if v.last.SrsPath != "" {
				t.Fatalf("verifier reached with bad input")
			}
		})
	}
}

func TestCreateMembership_PropagatesLookupAndEngineErrors(t *testing.T) {
	t.Parallel()
	req := request()
	req.KeyID = "unknown"
	if _, err := newSvc(&fakeVerifier{ok: true}, newMemRepo()).CreateMembership(context.Background(), req); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	boom := perr.Nativef("circuit missing")
	if _, err := newSvc(&fakeVerifier{err: boom}, newMemRepo()).CreateMembership(context.Background(), request()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want engine error", err)
	}
}

func TestPostLikes_Idempotent(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	s := newSvc(&fakeVerifier{ok: true}, repo)
	if _, err := s.CreateMembership(context.Background(), request()); err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}

	steps := []struct {
		like bool
		want int
	}{{true, 1}, {true, 1}, {false, 0}, {false, 0}}
	for i, st := range steps {
		n, err := s.PostLikes(context.Background(), bridge.PostLikesRequest{Pubkey: "12345", MessageID: "1", Like: st.like})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if n != st.want {
			t.Fatalf("step %d: count = %d, want %d", i, n, st.want)
		}
	}
}

func TestPostLikes_RequiresMember(t *testing.T) {
	t.Parallel()
	_, err := newSvc(&fakeVerifier{}, newMemRepo()).PostLikes(context.Background(), bridge.PostLikesRequest{Pubkey: "9", MessageID: "1", Like: true})
	if !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestPostLikes_StorageErrorIsDB(t *testing.T) {
	t.Parallel()
	s := New(fakeTx{err: errors.New("conn reset")}, memBinder{newMemRepo()}, &fakeVerifier{}, fakeKeys{})
	_, err := s.PostLikes(context.Background(), bridge.PostLikesRequest{Pubkey: "9", MessageID: "1"})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want db", err)
	}
}

func TestPostLikes_MemberRemovedMidCallIsForbidden(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.members["9"] = domain.Member{Pubkey: "9"}
	repo.likeErr = perr.FromPostgres(&pgconn.PgError{Code: "23503"}, "set like")

	_, err := newSvc(&fakeVerifier{}, repo).PostLikes(context.Background(), bridge.PostLikesRequest{Pubkey: "9", MessageID: "1", Like: true})
	if !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestPostLikes_KeepsMappedStorageCodes(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.members["9"] = domain.Member{Pubkey: "9"}
	repo.likeErr = perr.FromPostgres(&pgconn.PgError{Code: "22P02"}, "set like")

	_, err := newSvc(&fakeVerifier{}, repo).PostLikes(context.Background(), bridge.PostLikesRequest{Pubkey: "9", MessageID: "x"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}
