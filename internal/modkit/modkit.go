// Package modkit wires feature modules: shared deps, build options and the
// contract the API mounts against
package modkit

import "stealthbridge/internal/modkit/module"

// Module is what the API mounts
type Module = module.Module
