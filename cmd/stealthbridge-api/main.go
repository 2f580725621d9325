// @title         Stealthbridge API
// @version       0.1.0
// @description   Bridge channel for JWT proofs, ephemeral key signing and group membership
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/modkit/repokit"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/logger"
	phttp "stealthbridge/internal/platform/net/http"
	"stealthbridge/internal/platform/store"

	"stealthbridge/internal/services/api"
	"stealthbridge/internal/services/gateway"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres backs membership, clickhouse backs the call journal; both optional
	st, err := store.Open(ctx, store.FromConfig(root, "stealthbridge-api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	name := apiCfg.MayString("PLATFORM_NAME", "stealthbridge-api")
	gw, err := gateway.Build(ctx, gateway.Options{
		Config:   root,
		Store:    st,
		Log:      *l,
		Frontend: "http",
		Name:     name,
	})
	if err != nil {
		l.Panic().Err(err).Msg("gateway build failed")
	}
	// the gateway stops after the http drain so late calls still reach the journal
	gctx, gstop := context.WithCancel(context.WithoutCancel(ctx))
	gwDone := make(chan error, 1)
	go func() { gwDone <- gw.Run(gctx) }()

	// http server (CORE_API_PORT, CORE_API_READ_HEADER_TIMEOUT, CORE_API_IDLE_TIMEOUT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Gateway:        gw,
			ServiceName:    name,
			Stack:          httpkit.StackFromConfig(apiCfg),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error().Err(err).Msg("http shutdown")
		}
		gstop()
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	stop()
	if err := <-gwDone; err != nil {
		l.Error().Err(err).Msg("gateway stopped")
	}
}
