// Package module mounts the bridge method channel into the API
package module

import (
	modkit "stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/platform/net/middleware"

	chhttp "stealthbridge/internal/services/api/channel/http"
)

// Ports declares what the channel module needs injected
type Ports struct {
	Bridge chhttp.Invoker
}

// Module serves /channel behind optional bearer keys
type Module struct {
	b     modkit.Built
	ports Ports
	auth  middleware.AuthPort
}

// New panics without a bridge or with malformed api keys
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("channel"), modkit.WithPrefix("/channel")}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Bridge == nil {
		panic("channel API module requires a Bridge port")
	}

	keys, err := httpkit.ParseKeys(FromConfig(deps.Cfg).APIKeys)
	if err != nil {
		panic(err)
	}

	m := &Module{b: b, ports: injected}
	if len(keys) > 0 {
		m.auth = keys
		deps.Log.Info().Int("keys", len(keys)).Msg("channel: bearer keys required")
	} else {
		deps.Log.Warn().Msg("channel: no api keys configured, callers are anonymous")
	}
	return m
}

// MountRoutes mounts the channel under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) {
			chhttp.Register(pr, m.ports.Bridge)
		})
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the route prefix
func (m *Module) Prefix() string { return m.b.Prefix }

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }
