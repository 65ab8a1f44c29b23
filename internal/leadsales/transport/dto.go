// Package transport defines the wire contract between the Node bot core
// and this service. Field names are fixed: the bot already speaks this
// shape and both sides must stay byte-compatible.
package transport

import (
	"time"

	"github.com/google/uuid"

	"hf_cortex_backend/internal/leadsales/domain"
)

// QualifyPayload is the inner payload of one turn.
type QualifyPayload struct {
	// Msg is the inbound customer message in whatever shape the messenger
	// connector produced.
	Msg map[string]any `json:"msg"`
	// SessionSnapshot is the bot's dialogue state.
	SessionSnapshot map[string]any `json:"sessionSnapshot"`
	// BaseContext carries extra bot-side context; echoed back unchanged.
	BaseContext map[string]any `json:"baseContext"`
	// InjectedABCP is the raw supplier feed keyed by OEM, present on the
	// second pass after an abcp_lookup.
	InjectedABCP map[string]any `json:"injected_abcp"`
	// Offers are canonical rows from a previous turn, the fallback source
	// when no feed is injected.
	Offers []map[string]any `json:"offers"`
}

// QualifyRequest is the envelope the bot posts.
type QualifyRequest struct {
	App     string          `json:"app"`
	Flow    string          `json:"flow"`
	Payload *QualifyPayload `json:"payload" binding:"required"`
}

// QualifyResponse is the envelope returned to the bot.
type QualifyResponse struct {
	OK        bool                        `json:"ok"`
	App       string                      `json:"app"`
	Flow      string                      `json:"flow"`
	Stage     string                      `json:"stage,omitempty"`
	Context   map[string]any              `json:"context"`
	Result    *domain.QualificationResult `json:"result"`
	Error     *string                     `json:"error"`
	RequestID string                      `json:"request_id"`
	TS        string                      `json:"ts"`
}

// NewQualifyResponse stamps the envelope with a fresh request id and a
// UTC timestamp.
func NewQualifyResponse(app, flow string, result *domain.QualificationResult, context map[string]any) QualifyResponse {
	return QualifyResponse{
		OK:        true,
		App:       app,
		Flow:      flow,
		Stage:     string(result.Stage),
		Context:   context,
		Result:    result,
		RequestID: uuid.NewString(),
		TS:        time.Now().UTC().Format(time.RFC3339Nano),
	}
}
