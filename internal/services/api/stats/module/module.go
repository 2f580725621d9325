// Package module mounts journal statistics into the API
package module

import (
	modkit "stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/services/api/stats/domain"
	statshttp "stealthbridge/internal/services/api/stats/http"
	statssvc "stealthbridge/internal/services/api/stats/service"
	jdom "stealthbridge/internal/services/journal/domain"
)

// Ports declares the journal reader this module consumes; a nil Query answers 503
type Ports struct {
	Query jdom.QueryPort
}

// Module serves /stats
type Module struct {
	b   modkit.Built
	svc statssvc.Service
}

// New builds the stats module
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("stats"), modkit.WithPrefix("/stats")}, opts...)...)
	injected, _ := b.Ports.(Ports)
	return &Module{b: b, svc: statssvc.New(injected.Query)}
}

// MountRoutes mounts the stats endpoints under the prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { statshttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports exposes the stats service as a domain.ServicePort
func (m *Module) Ports() any { return domain.ServicePort(m.svc) }
