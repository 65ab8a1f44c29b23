// Package leadsales is the lead-qualification bounded context: parsers,
// offer canonicalization, policy, funnel hardening and the advisory model,
// wired behind a single HTTP endpoint.
package leadsales

import (
	apphttp "hf_cortex_backend/internal/http"
	"hf_cortex_backend/internal/leadsales/advisory"
	"hf_cortex_backend/internal/leadsales/handler"
	"hf_cortex_backend/internal/leadsales/service"
	"hf_cortex_backend/platform/logger"
)

// Module is the lead-sales bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the qualification pipeline. model may be nil when no
// API key is configured; the flow then always takes the fallback path.
func NewModule(model advisory.ModelClient, log *logger.Logger) *Module {
	adv := advisory.NewService(model, log)
	svc := service.New(adv, log)
	return &Module{handler: handler.New(svc, log)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "leadsales" }

// RegisterRoutes mounts the qualification endpoint behind token auth.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("")
	group.Use(ctx.Auth)
	m.handler.RegisterRoutes(group)
}
