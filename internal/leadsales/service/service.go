// Package service orchestrates one qualification turn: deterministic
// parsing and offer canonicalization around the advisory model, followed
// by the policy engine and the funnel governor.
package service

import (
	"context"
	"strings"

	"hf_cortex_backend/internal/leadsales/advisory"
	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/internal/leadsales/hardening"
	"hf_cortex_backend/internal/leadsales/offers"
	"hf_cortex_backend/internal/leadsales/parsers"
	"hf_cortex_backend/internal/leadsales/policy"
	"hf_cortex_backend/internal/leadsales/session"
	"hf_cortex_backend/platform/logger"
)

// AdvisoryClient drafts a qualification result for one turn.
type AdvisoryClient interface {
	Qualify(ctx context.Context, in advisory.Input) domain.QualificationResult
}

// TurnRequest is the decoded payload of one inbound bot turn.
type TurnRequest struct {
	Msg             map[string]any
	SessionSnapshot map[string]any
	InjectedABCP    map[string]any
	PayloadOffers   []map[string]any
}

// Service runs the lead-sales qualification pipeline.
type Service struct {
	advisory AdvisoryClient
	log      *logger.Logger
}

// New wires the pipeline.
func New(adv AdvisoryClient, log *logger.Logger) *Service {
	return &Service{advisory: adv, log: log}
}

// Qualify executes the full turn and returns the final result. The
// deterministic layers always win over the model: offers, oems and the
// chosen id are recomputed from the feed or the payload, policy verdicts
// replace the draft and the funnel governor enforces contact collection.
func (s *Service) Qualify(ctx context.Context, req TurnRequest) domain.QualificationResult {
	snap := session.AsSnapshot(req.SessionSnapshot)
	stageIn := snap.Stage()

	msg := req.Msg
	if msg == nil {
		msg = map[string]any{}
	}
	msgText := parsers.MessageText(msg)
	if msgText != "" {
		// The model always reads the canonical text from msg.text.
		msg["text"] = msgText
	}

	feed := offers.Feed(req.InjectedABCP)
	hasABCP := offers.FeedHasOffers(feed)

	var canonical []domain.Offer
	offersSource := ""
	if hasABCP {
		canonical = offers.BuildFromFeed(feed)
		offersSource = "abcp"
	} else if rows := offers.BuildFromPayload(req.PayloadOffers); len(rows) > 0 {
		// Offers echoed back by the bot from a previous turn keep their ids:
		// the customer's "вариант 2" and the session's sticky choice refer
		// to them.
		canonical = rows
		offersSource = "payload"
	}

	requestedOEM := s.resolveRequestedOEM(stageIn, msgText, snap)

	// Fresh feed on a new dialogue: price immediately, without the model.
	if hasABCP && len(canonical) > 0 && stageIn == domain.StageNew {
		return s.fastPricingPath(canonical, requestedOEM, stageIn)
	}

	ordered := canonical
	orderedOEMs := []string{}
	if offersSource == "abcp" {
		grouped := offers.GroupByOEM(canonical)
		orderedOEMs = offers.OrderOEMs(grouped, requestedOEM)
		ordered = offers.ReassignIDs(grouped, orderedOEMs)
	} else if offersSource == "payload" {
		orderedOEMs = distinctOEMs(ordered)
	}

	baseContext := map[string]any{
		"injected_abcp": map[string]any{
			"has_abcp":       hasABCP,
			"summary_by_oem": offers.Summarize(feed),
			"offers_by_oem":  map[string]any(feed),
		},
	}

	result := s.advisory.Qualify(ctx, advisory.Input{
		Msg:             msg,
		SessionSnapshot: req.SessionSnapshot,
		BaseContext:     baseContext,
		Offers:          ordered,
	})
	result.EnsureCollections()

	// Offers and oems are always the deterministic canon; the model's
	// chosen id must point into it.
	if len(ordered) > 0 {
		result.Offers = ordered
		result.OEMs = orderedOEMs

		sanitized, debugPatch := offers.SanitizeChoice(result.ChosenOfferID, offers.ValidIDs(ordered))
		result.ChosenOfferID = sanitized
		result.MergeDebug(debugPatch)
	}

	result = policy.Apply(result, msgText)
	result = hardening.ApplyStrictFunnel(result, stageIn, msgText, snap)

	result.SetDebugDefault("requested_oem", requestedOEM)
	result.SetDebugDefault("has_abcp", hasABCP)
	result.SetDebugDefault("stage_in", string(stageIn))
	if offersSource != "" {
		result.SetDebugDefault("offers_source", offersSource)
	}

	s.log.WithContext(ctx).FlowTurn(string(stageIn), string(result.Stage), string(result.Intent), result.Action, result.NeedOperator)
	return result
}

// resolveRequestedOEM extracts the OEM the dialogue is about. On a new
// dialogue the message text wins; afterwards the session's stored oems
// are the source of truth. A VIN in the session is never a requested OEM.
func (s *Service) resolveRequestedOEM(stageIn domain.FunnelStage, msgText string, snap session.Snapshot) string {
	if stageIn == domain.StageNew {
		if oem := parsers.ExtractOEM(msgText); oem != "" {
			return oem
		}
	}
	for _, stored := range snap.StateOEMs() {
		cand := strings.ToUpper(strings.TrimSpace(stored))
		if cand == "" {
			continue
		}
		if parsers.LooksLikeVIN(cand) {
			return ""
		}
		return cand
	}
	return ""
}

func (s *Service) fastPricingPath(canonical []domain.Offer, requestedOEM string, stageIn domain.FunnelStage) domain.QualificationResult {
	grouped := offers.GroupByOEM(canonical)
	orderedOEMs := offers.OrderOEMs(grouped, requestedOEM)
	ordered := offers.ReassignIDs(grouped, orderedOEMs)
	reply := offers.BuildPricingReply(ordered, orderedOEMs, requestedOEM)

	r := domain.NewResult()
	r.Action = domain.ActionReply
	r.Stage = domain.StagePricing
	r.Reply = reply
	r.OEMs = orderedOEMs
	r.Offers = ordered
	r.Debug = map[string]any{
		"short_path":    "abcp_injected_new",
		"requested_oem": requestedOEM,
		"has_abcp":      true,
		"stage_in":      string(stageIn),
		"offers_source": "abcp",
	}
	return r
}

func distinctOEMs(list []domain.Offer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, offer := range list {
		oem := strings.ToUpper(strings.TrimSpace(offer.OEM))
		if oem == "" || seen[oem] {
			continue
		}
		seen[oem] = true
		out = append(out, oem)
	}
	return out
}
