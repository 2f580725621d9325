// Command stealthbridge-channel serves the bridge over length prefixed CBOR frames on stdin and stdout
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"stealthbridge/internal/adapters/channel"
	"stealthbridge/internal/modkit/repokit"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/platform/store"
	"stealthbridge/internal/services/gateway"
)

func main() {
	root := config.New()
	chCfg := root.Prefix("CHANNEL_")

	// stdout carries frames, so logs go to stderr
	lo := logger.FromEnv()
	lo.Writer = os.Stderr
	lo.Component = "channel"
	logger.Init(lo)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	name := chCfg.MayString("NAME", "stealthbridge-channel")
	st, err := store.Open(ctx, store.FromConfig(root, name), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	gw, err := gateway.Build(ctx, gateway.Options{
		Config:   root,
		Store:    st,
		Log:      *l,
		Frontend: "channel",
		Name:     name,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("gateway build failed")
	}

	// the journal outlives the channel so the final calls get flushed
	jctx, jstop := context.WithCancel(context.WithoutCancel(ctx))
	gwDone := make(chan error, 1)
	go func() { gwDone <- gw.Run(jctx) }()

	srv := channel.New(gw.Bridge, name, chCfg.MayInt("MAX_FRAME", channel.DefaultMaxFrame))
	out := bufio.NewWriter(os.Stdout)
	if err := srv.Serve(ctx, bufio.NewReader(os.Stdin), out); err != nil {
		l.Error().Err(err).Msg("channel stopped")
	}

	jstop()
	if err := <-gwDone; err != nil {
		l.Error().Err(err).Msg("gateway stopped")
	}
}
