// Package module holds the module contract and port lookup, apart from
// modkit so a module can export its own ports type without an import cycle
package module

import (
	phttp "stealthbridge/internal/platform/net/http"
)

// Module mounts routes under its prefix and exposes a port set for cross wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
