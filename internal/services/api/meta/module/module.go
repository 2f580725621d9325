// Package module mounts the meta endpoints into the API
package module

import (
	"time"

	modkit "stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"

	"stealthbridge/internal/core/version"
	metahttp "stealthbridge/internal/services/api/meta/http"
)

// Ports optionally overrides what the meta endpoints report
type Ports struct {
	ServiceName string
	Platform    string
}

// Module serves /meta
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New fills blank ports from the build info
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)

	p, _ := b.Ports.(Ports)
	if p.ServiceName == "" {
		p.ServiceName = version.Info().Service
	}
	if p.Platform == "" {
		p.Platform = version.Platform(p.ServiceName)
	}
	md := metahttp.Deps{
		ServiceName: p.ServiceName,
		Platform:    p.Platform,
		StartedAt:   time.Now(),
	}
	if deps.PG != nil {
		md.PG = deps.PG
	}
	if deps.CH != nil {
		md.CH = deps.CH
	}
	return &Module{b: b, deps: md}
}

// MountRoutes mounts the meta endpoints under the prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports is nil: nothing consumes meta
func (m *Module) Ports() any { return nil }
