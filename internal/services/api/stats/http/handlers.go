// Package http provides http transport for stats
package http

import (
	stdhttp "net/http"

	"stealthbridge/internal/modkit/httpkit"
	"stealthbridge/internal/services/api/stats/domain"
	svc "stealthbridge/internal/services/api/stats/service"
)

// Register mounts stats endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// calls, failures and latency per bridge method
	httpkit.PostJSON[domain.MethodsInput](r, "/methods", h.methods)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /stats/methods Stats statsByMethod
// @Summary Bridge calls per method
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.MethodsInput true "Query"
// @Success 200 {array} domain.MethodRow "ok"
// @Failure 503 {object} httpkit.Envelope "journal disabled"
// @Router /stats/methods [post]
func (h *handlers) methods(r *stdhttp.Request, in domain.MethodsInput) (any, error) {
	return h.svc.Methods(r.Context(), in)
}
