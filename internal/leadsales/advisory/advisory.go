// Package advisory wraps the LLM call that drafts a qualification result.
// The draft is advisory only: every deterministic layer downstream may
// override it, and a broken or unavailable model degrades to a static
// reply instead of failing the turn.
package advisory

import (
	"context"
	"encoding/json"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/platform/logger"
)

const (
	appName  = "hf-cortex"
	flowName = "lead_sales"

	fallbackReply = "Сервис временно недоступен, менеджер скоро подключится."
)

// ModelClient generates a JSON completion for a system and user prompt.
type ModelClient interface {
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

// Input is everything the model sees for one turn.
type Input struct {
	Msg             map[string]any
	SessionSnapshot map[string]any
	BaseContext     map[string]any
	Offers          []domain.Offer
}

// Service drafts qualification results through the model client.
type Service struct {
	model ModelClient
	log   *logger.Logger
}

// NewService wires the advisory layer. A nil model client is allowed and
// makes every turn take the fallback path.
func NewService(model ModelClient, log *logger.Logger) *Service {
	return &Service{model: model, log: log}
}

// Qualify asks the model for a draft result. It never returns an error:
// transport and parse failures produce the static fallback with the cause
// recorded in debug.
func (s *Service) Qualify(ctx context.Context, in Input) domain.QualificationResult {
	if s.model == nil {
		return fallbackResult(map[string]any{"advisory_disabled": true})
	}

	offers := in.Offers
	if offers == nil {
		offers = []domain.Offer{}
	}
	request := map[string]any{
		"app":  appName,
		"flow": flowName,
		"payload": map[string]any{
			"msg":             in.Msg,
			"sessionSnapshot": in.SessionSnapshot,
			"baseContext":     in.BaseContext,
			"offers":          offers,
		},
	}
	user, err := json.Marshal(request)
	if err != nil {
		s.log.AdvisoryError("advisory.marshal", err)
		return fallbackResult(map[string]any{"advisory_error": err.Error()})
	}

	raw, err := s.model.GenerateJSON(ctx, systemPrompt, string(user))
	if err != nil {
		s.log.AdvisoryError("advisory.generate", err)
		return fallbackResult(map[string]any{"advisory_error": err.Error()})
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// The model broke JSON mode. Its raw text is not safe to send to the
		// customer, so fall back to the static reply.
		s.log.AdvisoryError("advisory.parse", err)
		return fallbackResult(map[string]any{"advisory_parse_error": true})
	}

	result := resultFromPayload(payload)
	supplementName(&result, payload)
	return result
}

func fallbackResult(debug map[string]any) domain.QualificationResult {
	r := domain.NewResult()
	r.Reply = fallbackReply
	r.MergeDebug(debug)
	return r
}
