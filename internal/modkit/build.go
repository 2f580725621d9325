package modkit

import (
	"net/http"

	"stealthbridge/internal/modkit/httpkit"
	str "stealthbridge/internal/platform/strings"
)

// Built is the resolved result of a module's options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Build applies opts in order; later options win. The prefix is normalized
// to one leading slash and it panics when the name or prefix is blank.
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	b := Built{
		Name:      str.MustString(c.name, "module name"),
		Prefix:    str.MustPrefix(c.prefix),
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		Subrouter: c.subrouter,
		Register:  c.register,
	}
	if b.Subrouter == nil {
		b.Subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}

// Mount opens a subrouter at Prefix behind Mw, passes it through Subrouter,
// then attaches routes followed by the Register hook
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	r.Route(b.Prefix, func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		sub = b.Subrouter(sub)
		routes(sub)
		b.Register(sub)
	})
}
