// Package http exposes the bridge method channel over HTTP
package http

import (
	"context"
	stdhttp "net/http"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/modkit/httpkit"
	perr "stealthbridge/internal/platform/errors"
)

// Invoker runs one bridge call for a request scoped goroutine
type Invoker interface {
	Invoke(ctx context.Context, method string, args bridge.Args) (bridge.Response, bool)
}

// MaxBody caps the size of one argument bag
const MaxBody int64 = 4 << 20

// Register mounts the channel endpoints
func Register(r httpkit.Router, b Invoker) {
	h := &handlers{bridge: b}
	httpkit.Get(r, "/", h.methods)
	r.Post("/{method}", httpkit.Handle(h.call))
}

type handlers struct{ bridge Invoker }

// swagger:route GET /channel Channel channelMethods
// @Summary List bridge methods and their reporting modes
// @Tags Channel
// @Produce json
// @Success 200 {array} bridge.MethodInfo "ok"
// @Router /channel [get]
func (h *handlers) methods(_ *stdhttp.Request) (any, error) {
	return bridge.Methods(), nil
}

// swagger:route POST /channel/{method} Channel channelCall
// @Summary Invoke a bridge method
// @Description Soft mode methods always answer 200 with the result key and an error key.
// @Description Hard mode failures answer 422 for bad arguments and 500 for engine faults.
// @Tags Channel
// @Accept json
// @Produce json
// @Param method path string true "Method name" example(proveJwt)
// @Param args body object false "Argument bag"
// @Success 200 {object} httpkit.Envelope "reply"
// @Failure 422 {object} httpkit.Envelope "invalid arguments"
// @Failure 500 {object} httpkit.Envelope "native error"
// @Failure 501 {object} httpkit.Envelope "not implemented"
// @Security BearerAuth
// @Router /channel/{method} [post]
func (h *handlers) call(r *stdhttp.Request) httpkit.Response {
	method := httpkit.Param(r, "method")
	args, err := httpkit.ParseObject(r, MaxBody)
	if err != nil {
		return httpkit.Error(err)
	}

	resp, ok := h.bridge.Invoke(r.Context(), method, args)
	if !ok {
		return httpkit.Error(perr.Unavailablef("call abandoned: %v", context.Cause(r.Context())))
	}
	return Reply(method, resp)
}

// Reply maps a bridge response onto the platform envelope
func Reply(method string, resp bridge.Response) httpkit.Response {
	switch resp.Channel {
	case bridge.ChannelReply:
		return httpkit.OK(resp.Value)
	case bridge.ChannelError:
		f := resp.Fault
		code := perr.ErrorCodeNative
		if f.Code == bridge.KindInvalidArguments {
			code = perr.ErrorCodeInvalidArgument
		}
		var details map[string]any
		if f.Details != "" {
			details = map[string]any{"trace": f.Details}
		}
		return httpkit.Fault(perr.Newf(code, "%s", f.Message), string(f.Code), details)
	}
	return httpkit.Error(perr.NotImplementedf("method %q is not implemented", method))
}
