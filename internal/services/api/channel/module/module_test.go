package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/modkit"
	"stealthbridge/internal/platform/config"
	pnet "stealthbridge/internal/platform/net"
	phttp "stealthbridge/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type recordingInvoker struct{ caller string }

func (r *recordingInvoker) Invoke(ctx context.Context, _ string, _ bridge.Args) (bridge.Response, bool) {
	r.caller = pnet.Caller(ctx)
	return bridge.Response{Channel: bridge.ChannelReply, Value: "ok"}, true
}

func mount(m modkit.Module) http.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	return r.Mux()
}

func TestNew_PanicsWithoutBridge(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(modkit.Deps{Cfg: config.New()})
}

func TestNew_OpenWithoutKeys(t *testing.T) {
	t.Parallel()
	inv := &recordingInvoker{}
	m := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(Ports{Bridge: inv}))
	if m.Name() != "channel" || m.(*Module).Prefix() != "/channel" {
		t.Fatalf("name=%q prefix=%q", m.Name(), m.(*Module).Prefix())
	}

	rec := httptest.NewRecorder()
	mount(m).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/channel/getPlatformVersion", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if inv.caller != "" {
		t.Fatalf("anonymous call tagged with caller %q", inv.caller)
	}
}

func TestNew_BearerKeys(t *testing.T) {
	t.Setenv("CORE_CHANNEL_API_KEYS", "ios:k1,android:k2")
	inv := &recordingInvoker{}
	h := mount(New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(Ports{Bridge: inv})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/channel/getPlatformVersion", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/channel/getPlatformVersion", nil)
	req.Header.Set("Authorization", "Bearer k2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || inv.caller != "android" {
		t.Fatalf("status=%d caller=%q", rec.Code, inv.caller)
	}
}

func TestNew_MalformedKeysPanics(t *testing.T) {
	t.Setenv("CORE_CHANNEL_API_KEYS", "nokey")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(Ports{Bridge: &recordingInvoker{}}))
}
