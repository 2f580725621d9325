package gateway

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/store"
	journalmod "stealthbridge/internal/services/journal/module"
)

func TestBuild_WithoutStore(t *testing.T) {
	t.Parallel()
	g, err := Build(context.Background(), Options{Config: config.New(), Frontend: "http", Name: "stealthbridge-test"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(g.Platform, "stealthbridge-test ") {
		t.Fatalf("platform = %q", g.Platform)
	}
	if g.Journal.Enabled() {
		t.Fatalf("journal enabled without ClickHouse")
	}

	resp, ok := g.Bridge.Invoke(context.Background(), string(bridge.MethodPlatformVersion), bridge.Args{})
	if !ok || resp.Channel != bridge.ChannelReply || resp.Value != g.Platform {
		t.Fatalf("platform reply = %+v ok=%v", resp, ok)
	}

	resp, ok = g.Bridge.Invoke(context.Background(), string(bridge.MethodPostLikes), bridge.Args{"pubkey": "1", "messageId": "m", "like": true})
	if !ok || resp.Channel != bridge.ChannelNotImplemented {
		t.Fatalf("membership without postgres = %+v", resp)
	}
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	t.Parallel()
	g, err := Build(context.Background(), Options{Config: config.New(), Frontend: "channel"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
}

type sinkCH struct {
	mu   sync.Mutex
	rows int
}

func (c *sinkCH) Insert(_ context.Context, _ string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows += len(data.([][]any))
	return nil
}

func (c *sinkCH) Exec(context.Context, string, ...any) error { return nil }
func (c *sinkCH) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, nil
}
func (c *sinkCH) Close() error { return nil }

func (c *sinkCH) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// gatedEngine holds GenerateEphemeralKey until release is closed
type gatedEngine struct {
	engine.Engine
	entered chan struct{}
	release chan struct{}
}

func (e *gatedEngine) GenerateEphemeralKey(context.Context) (engine.EphemeralKey, error) {
	e.entered <- struct{}{}
	<-e.release
	return engine.EphemeralKey{PublicKey: "1"}, nil
}

func TestRun_JournalsCallsFinishingAfterCancel(t *testing.T) {
	t.Parallel()
	sink := &sinkCH{}
	jm := journalmod.New(modkit.Deps{Cfg: config.New(), CH: sink})
	eng := &gatedEngine{entered: make(chan struct{}, 1), release: make(chan struct{})}
	g := &Gateway{
		Bridge:  bridge.New(bridge.Options{Engine: eng, Platform: "p", Recorder: jm.JournalPorts().Recorder}),
		Journal: jm,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	if resp, ok := g.Bridge.Invoke(context.Background(), string(bridge.MethodPlatformVersion), bridge.Args{}); !ok || resp.Channel != bridge.ChannelReply {
		t.Fatalf("platform reply = %+v", resp)
	}
	slow := make(chan bool, 1)
	go func() {
		_, ok := g.Bridge.Invoke(context.Background(), string(bridge.MethodGenerateEphemeralKey), bridge.Args{})
		slow <- ok
	}()
	<-eng.entered

	cancel()
	select {
	case <-done:
		t.Fatalf("Run returned with a call in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(eng.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return")
	}
	if !<-slow {
		t.Fatalf("slow call abandoned")
	}
	if n := sink.count(); n != 2 {
		t.Fatalf("rows journaled = %d want 2", n)
	}
}
