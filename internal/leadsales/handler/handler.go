// Package handler exposes the qualification endpoint. The contract with
// the bot is "always answer": any internal failure still returns a
// well-formed result with a fallback reply, never an empty 5xx.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/internal/leadsales/service"
	"hf_cortex_backend/internal/leadsales/transport"
	"hf_cortex_backend/platform/apperr"
	"hf_cortex_backend/platform/httpkit"
	"hf_cortex_backend/platform/logger"
)

const (
	defaultApp  = "hf-cortex"
	defaultFlow = "lead_sales"

	unavailableReply = "Сервис временно недоступен, менеджер скоро подключится."
)

// Handler serves the lead-sales qualification endpoint.
type Handler struct {
	svc *service.Service
	log *logger.Logger
}

// New creates the handler.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts the qualification endpoint on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/lead-sales", h.Qualify)
}

// Qualify handles one conversation turn.
func (h *Handler) Qualify(c *gin.Context) {
	var req transport.QualifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, "leadsales.qualify", "invalid request body", err))
		return
	}
	if httpkit.HandleError(c, validateRequest(req)) {
		return
	}

	result := h.qualifySafely(c, req)

	context := map[string]any{
		"sessionSnapshot": req.Payload.SessionSnapshot,
		"baseContext":     req.Payload.BaseContext,
		"injected_abcp":   req.Payload.InjectedABCP,
	}

	app := req.App
	if app == "" {
		app = defaultApp
	}
	flow := req.Flow
	if flow == "" {
		flow = defaultFlow
	}

	c.JSON(http.StatusOK, transport.NewQualifyResponse(app, flow, &result, context))
}

// validateRequest rejects envelopes this core cannot serve.
func validateRequest(req transport.QualifyRequest) error {
	if req.Flow != "" && req.Flow != defaultFlow {
		return apperr.New(apperr.KindValidation, "unsupported flow: "+req.Flow)
	}
	if req.Payload == nil {
		return apperr.New(apperr.KindValidation, "missing payload")
	}
	return nil
}

// qualifySafely shields the pipeline: a panic becomes a fallback result.
func (h *Handler) qualifySafely(c *gin.Context, req transport.QualifyRequest) (result domain.QualificationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.WithContext(c.Request.Context()).Error("qualification panic", "panic", rec)
			result = domain.NewResult()
			result.Reply = unavailableReply
			result.Debug["flow_exception"] = true
		}
	}()
	return h.svc.Qualify(c.Request.Context(), service.TurnRequest{
		Msg:             req.Payload.Msg,
		SessionSnapshot: req.Payload.SessionSnapshot,
		InjectedABCP:    req.Payload.InjectedABCP,
		PayloadOffers:   req.Payload.Offers,
	})
}
