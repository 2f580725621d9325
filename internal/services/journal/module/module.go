// Package module implements the call journal module
package module

import (
	"context"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/modkit/repokit"
	"stealthbridge/internal/services/journal/domain"
	"stealthbridge/internal/services/journal/repo"
	"stealthbridge/internal/services/journal/service"
)

// Ports exposed by the journal module; both are nil when ClickHouse is not configured
type Ports struct {
	Recorder bridge.Recorder
	Query    domain.QueryPort
}

// Module implements the journal service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Service
	repo  *repo.CH
	ports Ports
}

// New constructs a new journal module
func New(deps modkit.Deps) *Module {
	m := &Module{deps: deps, opts: FromConfig(deps.Cfg)}
	if deps.CH == nil {
		return m
	}

	m.repo = repo.NewCH(repokit.CH(context.Background(), deps.CH))
	m.svc = service.New(m.repo, service.Config{
		Buffer:     m.opts.Buffer,
		BatchSize:  m.opts.BatchSize,
		FlushEvery: m.opts.FlushEvery,
	})
	m.ports = Ports{Recorder: m.svc, Query: m.repo}
	return m
}

// Run creates the table when asked and flushes the journal until ctx ends; it returns at once when disabled
func (m *Module) Run(ctx context.Context) error {
	if m.svc == nil {
		return nil
	}
	if m.opts.Migrate {
		if err := m.repo.Migrate(ctx); err != nil {
			m.deps.Log.Error().Err(err).Msg("journal: migrate failed")
		}
	}
	return m.svc.Run(ctx)
}

// Enabled reports whether calls are journaled
func (m *Module) Enabled() bool { return m.svc != nil }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "journal" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// JournalPorts returns the typed ports
func (m *Module) JournalPorts() Ports { return m.ports }

// MountRoutes satisfies modkit.Module; this module has no routes
func (m *Module) MountRoutes(r httpkit.Router) {}
