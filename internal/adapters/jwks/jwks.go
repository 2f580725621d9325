// Package jwks resolves OAuth signer keys from a published JSON web key set
package jwks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"

	"stealthbridge/internal/core/engine"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/platform/net/client"
)

// GoogleCertsURL publishes the keys that sign Google id tokens
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

const setKey = "keys"

// Getter is the slice of the HTTP client the resolver needs
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Resolver fetches and caches a key set
type Resolver struct {
	url   string
	http  Getter
	cache *cache.Cache
}

// New returns a resolver for url; the fetched set is kept for ttl
func New(url string, ttl time.Duration, g Getter) *Resolver {
	if url == "" {
		url = GoogleCertsURL
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if g == nil {
		g = client.New(client.DefaultOptions)
	}
	return &Resolver{url: url, http: g, cache: cache.New(ttl, 10*time.Minute)}
}

// Key returns the key with id kid, refetching once when the cached set lacks it
func (r *Resolver) Key(ctx context.Context, kid string) (engine.Jwk, error) {
	if kid == "" {
		return engine.Jwk{}, perr.InvalidArgf("key id is empty")
	}
	if set, ok := r.cache.Get(setKey); ok {
		if k, ok := find(set.([]engine.Jwk), kid); ok {
			return k, nil
		}
	}

	set, err := r.fetch(ctx)
	if err != nil {
		return engine.Jwk{}, err
	}
	k, ok := find(set, kid)
	if !ok {
		logger.C(ctx).Warn().Str("kid", kid).Msg("signer key not found")
		return engine.Jwk{}, perr.NotFoundf("signer key %q not found", kid)
	}
	return k, nil
}

// Modulus returns the base64url modulus of key kid
func (r *Resolver) Modulus(ctx context.Context, kid string) (string, error) {
	k, err := r.Key(ctx, kid)
	if err != nil {
		return "", err
	}
	return k.N, nil
}

func (r *Resolver) fetch(ctx context.Context) ([]engine.Jwk, error) {
	raw, err := r.http.Get(ctx, r.url)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "fetch key set")
	}
	var doc struct {
		Keys []engine.Jwk `json:"keys"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode key set")
	}
	r.cache.SetDefault(setKey, doc.Keys)
	return doc.Keys, nil
}

func find(set []engine.Jwk, kid string) (engine.Jwk, bool) {
	for _, k := range set {
		if k.Kid == kid {
			return k, true
		}
	}
	return engine.Jwk{}, false
}
