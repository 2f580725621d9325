// Package http serves liveness, readiness and build metadata
package http

import (
	"context"
	"net/http"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/core/version"
	"stealthbridge/internal/modkit/httpkit"
)

// Pinger is satisfied by store adapters that can report reachability
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies; a nil PG or CH is reported as skipped
type Deps struct {
	ServiceName string
	Platform    string
	StartedAt   time.Time
	PG          any
	CH          any
}

// ReadyTimeout bounds each backend ping
const ReadyTimeout = 2 * time.Second

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/platform", h.platform)
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool      `json:"ok"      example:"true"`
	Service string    `json:"service" example:"stealthbridge-api"`
	Started time.Time `json:"started" example:"2026-10-19T13:00:00Z"`
	Uptime  int64     `json:"uptime"  example:"300"`
}

// ReadyCheck is the outcome for one backend: ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse rolls the checks up into ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
}

// PlatformResponse reports what getPlatformVersion answers plus the method table
type PlatformResponse struct {
	Platform string              `json:"platform" example:"stealthbridge-api v0.3.1 go1.25.0 linux/amd64"`
	Methods  []bridge.MethodInfo `json:"methods"`
	Build    version.BuildInfo   `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC(),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness with a ping per backend
// @Description A skipped backend degrades readiness, a failed one fails it.
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	out := ReadyResponse{Status: "ok"}
	for _, c := range []ReadyCheck{ping(r.Context(), "pg", h.deps.PG), ping(r.Context(), "ch", h.deps.CH)} {
		switch {
		case c.Status == "fail":
			out.Status = "fail"
		case c.Status != "ok" && out.Status == "ok":
			out.Status = "degraded"
		}
		out.Checks = append(out.Checks, c)
	}
	return out, nil
}

func ping(ctx context.Context, name string, backend any) ReadyCheck {
	if backend == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := backend.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	ctx, cancel := context.WithTimeout(ctx, ReadyTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/platform Meta metaPlatform
// @Summary Platform string, bridge methods and build
// @Tags Meta
// @Produce json
// @Success 200 {object} PlatformResponse "ok"
// @Router /meta/platform [get]
func (h *handlers) platform(_ *http.Request) (any, error) {
	return PlatformResponse{
		Platform: h.deps.Platform,
		Methods:  bridge.Methods(),
		Build:    version.Info(),
	}, nil
}
