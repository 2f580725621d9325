// Package module builds the proving engine and the provider key resolver from config
package module

import (
	"os"
	"strings"

	"stealthbridge/internal/adapters/jwks"
	"stealthbridge/internal/adapters/prover/native"
	"stealthbridge/internal/adapters/prover/remote"
	"stealthbridge/internal/core/engine"
	enginenative "stealthbridge/internal/core/engine/native"
	"stealthbridge/internal/core/ephemeral"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/platform/net/client"
)

// Ports exposed by the engine module
type Ports struct {
	Engine engine.Engine
	Keys   *jwks.Resolver
}

// Module owns the engine wiring
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New builds the engine; it panics when the remote prover is selected without a url
func New(deps modkit.Deps) *Module {
	o := FromConfig(deps.Cfg)
	httpc := client.New(client.Options{
		Timeout:  o.RemoteTimeout,
		RetryMax: o.RemoteMaxRetries,
		WaitMin:  client.DefaultOptions.WaitMin,
		WaitMax:  client.DefaultOptions.WaitMax,
	})

	var backend engine.Backend
	switch strings.ToLower(o.Prover) {
	case ProverRemote:
		if o.RemoteURL == "" {
			panic("engine: ENGINE_REMOTE_URL is required for the remote prover")
		}
		backend = remote.New(o.RemoteURL, httpc)
	default:
		backend = native.New(o.CircuitsDir, o.ArtifactTTL, os.ReadFile)
	}
	deps.Log.Info().
		Str("prover", strings.ToLower(o.Prover)).
		Str("circuits_dir", o.CircuitsDir).
		Str("remote_url", o.RemoteURL).
		Msg("engine: backend selected")

	return &Module{
		deps: deps,
		opts: o,
		ports: Ports{
			Engine: enginenative.New(backend, ephemeral.New()),
			Keys:   jwks.New(o.JWKSURL, o.JWKSTTL, httpc),
		},
	}
}

// EnginePorts returns the typed ports
func (m *Module) EnginePorts() Ports { return m.ports }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "engine" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; this module has no routes
func (m *Module) MountRoutes(r httpkit.Router) {}
