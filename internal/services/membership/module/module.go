// Package module implements the membership service module
package module

import (
	"context"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/modkit/repokit"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/services/membership/domain"
	"stealthbridge/internal/services/membership/repo"
	"stealthbridge/internal/services/membership/service"
)

// Options holds configuration settings for the membership module
type Options struct {
	Migrate          bool
	StatementTimeout time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_MEMBERSHIP_")
	return Options{
		Migrate:          c.MayBool("MIGRATE", true),
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", 5*time.Second),
	}
}

// Ports exposed by the membership module; Members is nil without postgres
type Ports struct {
	Members bridge.Members
}

// Module implements the membership service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the module; membership stays off when deps.PG is nil
func New(deps modkit.Deps, verifier domain.Verifier, keys domain.KeyResolver) *Module {
	m := &Module{deps: deps, opts: FromConfig(deps.Cfg)}
	if deps.PG == nil {
		return m
	}
	db := repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(m.opts.StatementTimeout)...)
	m.ports = Ports{Members: service.New(db, repo.NewPG(), verifier, keys)}
	return m
}

// Init applies the schema when enabled and asked to
func (m *Module) Init(ctx context.Context) error {
	if m.ports.Members == nil || !m.opts.Migrate {
		return nil
	}
	return repo.Migrate(ctx, m.deps.PG)
}

// MembershipPorts returns the typed ports
func (m *Module) MembershipPorts() Ports { return m.ports }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "membership" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; this module has no routes
func (m *Module) MountRoutes(r httpkit.Router) {}
