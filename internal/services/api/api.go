// Package api provides the HTTP API for the application
package api

import (
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/logger"
	phttp "stealthbridge/internal/platform/net/http"
	"stealthbridge/internal/platform/net/middleware"
	"stealthbridge/internal/platform/store"

	"stealthbridge/internal/modkit"
	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/modkit/module"
	"stealthbridge/internal/modkit/swaggerkit"

	channelmod "stealthbridge/internal/services/api/channel/module"
	metamod "stealthbridge/internal/services/api/meta/module"
	statsmod "stealthbridge/internal/services/api/stats/module"
	"stealthbridge/internal/services/gateway"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Gateway        *gateway.Gateway
	ServiceName    string
	Stack          httpkit.StackOptions
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	gw := opt.Gateway
	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{
			ServiceName: opt.ServiceName,
			Platform:    gw.Platform,
		})),
		channelmod.New(deps, modkit.WithPorts(channelmod.Ports{Bridge: gw.Bridge})),
		statsmod.New(deps, modkit.WithPorts(statsmod.Ports{
			Query: gw.Journal.JournalPorts().Query,
		})),
	}

	// load balancer heartbeat, answered before any routing
	r.Use(middleware.Heartbeat("/health"))

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
