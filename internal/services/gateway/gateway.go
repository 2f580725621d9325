// Package gateway assembles the bridge and the modules behind it for one front-end process
package gateway

import (
	"context"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/core/version"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/module"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/platform/store"

	enginemod "stealthbridge/internal/services/engine/module"
	journalmod "stealthbridge/internal/services/journal/module"
	membershipmod "stealthbridge/internal/services/membership/module"
)

// Options configures Build
type Options struct {
	Config   config.Conf
	Store    *store.Store
	Log      logger.Logger
	Frontend string // "http" or "channel"
	Name     string // platform name, defaults to the build service name
}

// Gateway is a ready bridge plus the modules it depends on
type Gateway struct {
	Bridge   *bridge.Bridge
	Platform string

	Engine     *enginemod.Module
	Membership *membershipmod.Module
	Journal    *journalmod.Module
}

// Build wires engine, membership and journal into a bridge; a nil store leaves membership and journal off
func Build(ctx context.Context, o Options) (*Gateway, error) {
	deps := modkit.Deps{Log: o.Log, Cfg: o.Config}
	if o.Store != nil {
		deps.PG = o.Store.PG
		deps.CH = o.Store.CH
	}

	em := enginemod.New(deps)
	ep := module.MustPortsOf[enginemod.Ports](em)

	mm := membershipmod.New(deps, ep.Engine, ep.Keys)
	if err := mm.Init(ctx); err != nil {
		return nil, err
	}
	jm := journalmod.New(deps)

	platform := version.Platform(o.Name)
	b := bridge.New(bridge.Options{
		Engine:   ep.Engine,
		Members:  mm.MembershipPorts().Members,
		Platform: platform,
		Frontend: o.Frontend,
		Recorder: jm.JournalPorts().Recorder,
	})

	o.Log.Info().
		Str("platform", platform).
		Str("frontend", o.Frontend).
		Bool("membership", mm.MembershipPorts().Members != nil).
		Bool("journal", jm.Enabled()).
		Msg("gateway: bridge ready")

	return &Gateway{Bridge: b, Platform: platform, Engine: em, Membership: mm, Journal: jm}, nil
}

// Run flushes the journal until ctx ends. ctx must end only once no new calls can
// arrive; Run then waits for in-flight calls before the final flush.
func (g *Gateway) Run(ctx context.Context) error {
	jctx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()
	done := make(chan error, 1)
	go func() { done <- g.Journal.Run(jctx) }()

	select {
	case err := <-done:
		<-ctx.Done()
		g.Bridge.Wait()
		return err
	case <-ctx.Done():
	}
	g.Bridge.Wait()
	stop()
	return <-done
}
