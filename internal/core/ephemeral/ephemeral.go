// Package ephemeral generates short lived ed25519 keys and signs group messages with them
package ephemeral

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iden3/go-iden3-crypto/poseidon"

	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/core/jwtinput"
	perr "stealthbridge/internal/platform/errors"
)

const (
	// Lifetime is how long a generated key stays valid
	Lifetime = 7 * 24 * time.Hour

	// Provider is the only anon group provider issued today
	Provider = "google-oauth"

	saltBytes = 30
	attempts  = 10
)

// TimeLayout is RFC3339 with milliseconds in UTC
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Keys issues keys and signatures; zero value uses crypto/rand and time.Now
type Keys struct {
	Rand  io.Reader
	Now   func() time.Time
	NewID func() string
}

// New returns Keys with production sources
func New() *Keys {
	return &Keys{Rand: rand.Reader, Now: time.Now, NewID: ShortID}
}

func (k *Keys) rand() io.Reader {
	if k == nil || k.Rand == nil {
		return rand.Reader
	}
	return k.Rand
}

func (k *Keys) now() time.Time {
	if k == nil || k.Now == nil {
		return time.Now().UTC()
	}
	return k.Now().UTC()
}

func (k *Keys) id() string {
	if k == nil || k.NewID == nil {
		return ShortID()
	}
	return k.NewID()
}

// Generate returns a fresh key with salt, expiry and poseidon commitment
func (k *Keys) Generate() (engine.EphemeralKey, error) {
	var lastErr error
	for range attempts {
		pub, priv, err := ed25519.GenerateKey(k.rand())
		if err != nil {
			return engine.EphemeralKey{}, perr.Wrap(err, perr.ErrorCodeNative, "generate ed25519 key")
		}
		seed := make([]byte, ed25519.SeedSize)
		if _, err := io.ReadFull(k.rand(), seed); err != nil {
			return engine.EphemeralKey{}, perr.Wrap(err, perr.ErrorCodeNative, "read salt")
		}

		expiry := k.now().Add(Lifetime).Truncate(time.Millisecond)
		pubInt := new(big.Int).SetBytes(pub)
		salt := new(big.Int).SetBytes(seed[:saltBytes])

		hash, err := PubkeyHash(pubInt, salt, expiry)
		if err != nil {
			lastErr = err
			continue
		}
		return engine.EphemeralKey{
			PublicKey:             pubInt.String(),
			PrivateKey:            new(big.Int).SetBytes(priv.Seed()).String(),
			Salt:                  salt.String(),
			EphemeralPubkeyExpiry: expiry.Format(TimeLayout),
			EphemeralPubkeyHash:   hash.String(),
		}, nil
	}
	return engine.EphemeralKey{}, perr.Wrap(lastErr, perr.ErrorCodeNative, "ephemeral key generation exhausted attempts")
}

// PubkeyHash commits to a key as poseidon(pubkey >> 3, salt, expiry seconds)
func PubkeyHash(pubkey, salt *big.Int, expiry time.Time) (*big.Int, error) {
	h, err := poseidon.Hash([]*big.Int{
		new(big.Int).Rsh(pubkey, 3),
		salt,
		big.NewInt(expiry.Unix()),
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeNative, "poseidon hash")
	}
	return h, nil
}

// Sign builds and signs a message for a group using a decimal private key
func (k *Keys) Sign(in engine.SignMessageInput) (engine.SignedMessage, error) {
	priv, err := privateKey(in.EphemeralPrivateKey)
	if err != nil {
		return engine.SignedMessage{}, err
	}
	ts := k.now().Truncate(time.Millisecond)

	digest := Digest(in.AnonGroupID, in.Text, ts)
	sig := ed25519.Sign(priv, digest)

	return engine.SignedMessage{
		ID:                    k.id(),
		AnonGroupID:           in.AnonGroupID,
		AnonGroupProvider:     Provider,
		Text:                  in.Text,
		Timestamp:             ts.Format(TimeLayout),
		Internal:              in.Internal,
		Likes:                 0,
		Signature:             new(big.Int).SetBytes(sig).String(),
		EphemeralPubkey:       in.EphemeralPublicKey,
		EphemeralPubkeyExpiry: in.EphemeralPubkeyExpiry,
	}, nil
}

// Verify checks a signed message against the public key it names
func Verify(m engine.SignedMessage) (bool, error) {
	pub, err := fixed(m.EphemeralPubkey, ed25519.PublicKeySize, "ephemeralPubkey")
	if err != nil {
		return false, err
	}
	sig, err := fixed(m.Signature, ed25519.SignatureSize, "signature")
	if err != nil {
		return false, err
	}
	ts, err := jwtinput.ParseExpiry(m.Timestamp)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, Digest(m.AnonGroupID, m.Text, ts), sig), nil
}

// Digest is sha256("{group}_{text}_{unix millis}")
func Digest(group, text string, ts time.Time) []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s_%s_%d", group, text, ts.UnixMilli()))
	return sum[:]
}

// ShortID joins the first two segments of a random uuid
func ShortID() string {
	parts := strings.SplitN(uuid.NewString(), "-", 3)
	return parts[0] + parts[1]
}

func privateKey(decimal string) (ed25519.PrivateKey, error) {
	seed, err := fixed(decimal, ed25519.SeedSize, "ephemeralPrivateKey")
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// fixed renders a decimal integer as size big endian bytes
func fixed(decimal string, size int, name string) ([]byte, error) {
	n, err := jwtinput.ParseDecimal(decimal, name)
	if err != nil {
		return nil, err
	}
	if n.BitLen() > size*8 {
		return nil, perr.InvalidArgf("%s does not fit in %d bytes", name, size)
	}
	return n.FillBytes(make([]byte, size)), nil
}
