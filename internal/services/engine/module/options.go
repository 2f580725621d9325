package module

import (
	"time"

	"stealthbridge/internal/adapters/jwks"
	"stealthbridge/internal/platform/config"
)

// Prover backends
const (
	ProverNative = "native"
	ProverRemote = "remote"
)

// Options selects and tunes the proving backend
type Options struct {
	Prover      string
	CircuitsDir string
	ArtifactTTL time.Duration

	RemoteURL        string
	RemoteTimeout    time.Duration
	RemoteMaxRetries int

	JWKSURL string
	JWKSTTL time.Duration
}

// FromConfig reads ENGINE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ENGINE_")
	return Options{
		Prover:           c.MayEnum("PROVER", ProverNative, ProverNative, ProverRemote),
		CircuitsDir:      c.MayString("CIRCUITS_DIR", ""),
		ArtifactTTL:      c.MayDuration("ARTIFACT_TTL", time.Hour),
		RemoteURL:        c.MayString("REMOTE_URL", ""),
		RemoteTimeout:    time.Duration(c.MayInt("REMOTE_TIMEOUT_MS", 120_000)) * time.Millisecond,
		RemoteMaxRetries: c.MayInt("REMOTE_MAX_RETRIES", 2),
		JWKSURL:          c.MayString("JWKS_URL", jwks.GoogleCertsURL),
		JWKSTTL:          c.MayDuration("JWKS_TTL", 6*time.Hour),
	}
}
