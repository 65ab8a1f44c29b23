// Package policy overrides the advisory model's draft with deterministic
// verdicts for message patterns the business does not allow the model to
// decide: marketplace service notices, order status checks, ambiguous bare
// numbers, VIN hard picks and refusals.
package policy

import (
	"regexp"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/internal/leadsales/parsers"
)

const (
	serviceReply       = "Спасибо за уведомление, проверим обновление прайса."
	clarifyNumberReply = "Подскажите, пожалуйста, это номер заказа или OEM (номер детали)?"
	orderStatusReply   = "Принял номер заказа, проверим статус и вернемся с обновлением."
	hardPickReply      = "По такому запросу нужен сложный подбор по ВИН/фото, передаю вашу заявку менеджеру. " +
		"Он свяжется с вами и уточнит детали."
	lostReply        = "Понял вас. Если понадобится подбор — напишите, пожалуйста."
	mixedOEMVINReply = "Принял номер детали, подберу варианты и вернусь с ценой и сроком."
)

// RE2's \b is ASCII-only, so Cyrillic words get explicit non-letter guards.
var (
	vinHintRe   = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(vin|вин)(?:[^\p{L}]|$)`)
	photoHintRe = regexp.MustCompile(`(?i)(фото|картинк|скрин|видео)`)

	servicePriceStaleRe = regexp.MustCompile(`(?i)(ваш\s+прайс|прайс[^\n]{0,120}не\s+обновлял|не\s+обновлял(?:ся|ось))`)
	serviceMarketRe     = regexp.MustCompile(`(?i)(farpost|packetdated|tg\.good\.packet)`)

	digitTokenRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(\d{4,12})(?:[^\p{L}\p{N}]|$)`)

	lostRe = regexp.MustCompile(`(?i)(не\s*актуаль|не\s*нужн|не\s*интерес|отбой|откаж|передумал|не\s*буду\s*брать)`)
)

// Apply runs the policy rules over the draft result. The first matching
// rule wins; an empty message only backfills a missing intent.
func Apply(r domain.QualificationResult, msgText string) domain.QualificationResult {
	text := strings.TrimSpace(msgText)
	if text == "" {
		backfillIntent(&r)
		return r
	}

	digitTokens := collectDigitTokens(text)

	switch {
	case looksLikeServiceNotice(text):
		return applyServiceNotice(r)
	case looksLikeOrderStatus(text, digitTokens):
		return applyOrderStatus(r)
	case looksLikeAmbiguousNumber(text, digitTokens):
		return applyAmbiguousNumber(r)
	case looksLikeMixedOEMVIN(text):
		return applyMixedOEMVIN(r)
	case looksLikeHardPick(text):
		return applyHardPick(r)
	case lostRe.MatchString(text):
		return applyLost(r)
	}

	backfillIntent(&r)
	return r
}

func collectDigitTokens(text string) map[string]struct{} {
	tokens := map[string]struct{}{}
	// Overlapping guards can swallow the separator between adjacent tokens,
	// so scan the remainder after each match.
	rest := text
	for {
		loc := digitTokenRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		tokens[rest[loc[2]:loc[3]]] = struct{}{}
		rest = rest[loc[3]:]
	}
	return tokens
}

func looksLikeServiceNotice(text string) bool {
	return servicePriceStaleRe.MatchString(text) && serviceMarketRe.MatchString(text)
}

func looksLikeOrderStatus(text string, digitTokens map[string]struct{}) bool {
	return len(digitTokens) > 0 && parsers.HasOrderContext(text)
}

func looksLikeAmbiguousNumber(text string, digitTokens map[string]struct{}) bool {
	if len(digitTokens) != 1 {
		return false
	}
	if parsers.HasOEMLikeToken(text) || parsers.HasVINToken(text) {
		return false
	}
	if looksLikeOrderStatus(text, digitTokens) {
		return false
	}
	if parsers.ExtractPhone(text) != "" {
		return false
	}
	return true
}

func looksLikeHardPick(text string) bool {
	return parsers.HasVINToken(text) || vinHintRe.MatchString(text) || photoHintRe.MatchString(text)
}

func looksLikeMixedOEMVIN(text string) bool {
	return parsers.HasVINToken(text) && parsers.HasOEMLikeToken(text) && !photoHintRe.MatchString(text)
}

func clearOfferVerdict(r *domain.QualificationResult) {
	r.OEMs = []string{}
	r.ChosenOfferID = domain.NoChoice()
	r.ProductRows = []any{}
	r.ProductPicks = []any{}
}

func applyServiceNotice(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentServiceNotice
	r.ConfidenceAtLeast(1.0)
	r.AmbiguityReason = ""
	r.RequiresClarification = false
	r.Action = domain.ActionReply
	r.Stage = domain.StageInWork
	r.NeedOperator = false
	clearOfferVerdict(&r)
	r.Reply = serviceReply
	return r
}

func applyOrderStatus(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentOrderStatus
	r.ConfidenceAtLeast(0.95)
	r.AmbiguityReason = ""
	r.RequiresClarification = false
	r.Action = domain.ActionReply
	r.Stage = domain.StageInWork
	r.NeedOperator = false
	clearOfferVerdict(&r)
	if strings.TrimSpace(r.Reply) == "" {
		r.Reply = orderStatusReply
	}
	return r
}

func applyAmbiguousNumber(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentClarifyNumberType
	r.ConfidenceAtLeast(1.0)
	r.AmbiguityReason = domain.AmbiguityNumberType
	r.RequiresClarification = true
	r.Action = domain.ActionReply
	r.NeedOperator = false
	r.Stage = domain.StageNew
	clearOfferVerdict(&r)
	r.Reply = clarifyNumberReply
	return r
}

func applyMixedOEMVIN(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentOEMQuery
	r.ConfidenceAtLeast(0.95)
	r.AmbiguityReason = ""
	r.RequiresClarification = false
	r.NeedOperator = false

	action := strings.ToLower(strings.TrimSpace(r.Action))
	if action == "" || action == domain.ActionHandoverOperator {
		r.Action = domain.ActionABCPLookup
	}

	stage := domain.NormalizeStage(string(r.Stage))
	if stage == "" || stage == domain.StageHardPick || stage == domain.StageLost {
		r.Stage = domain.StagePricing
	}

	if strings.TrimSpace(r.Reply) == "" {
		r.Reply = mixedOEMVINReply
	}
	return r
}

func applyHardPick(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentVINHardPick
	r.ConfidenceAtLeast(0.99)
	r.AmbiguityReason = ""
	r.RequiresClarification = false
	r.Action = domain.ActionHandoverOperator
	r.Stage = domain.StageHardPick
	r.NeedOperator = true
	clearOfferVerdict(&r)
	if strings.TrimSpace(r.Reply) == "" {
		r.Reply = hardPickReply
	}
	return r
}

func applyLost(r domain.QualificationResult) domain.QualificationResult {
	r.Intent = domain.IntentLost
	r.ConfidenceAtLeast(0.99)
	r.AmbiguityReason = ""
	r.RequiresClarification = false
	r.Action = domain.ActionReply
	r.Stage = domain.StageLost
	r.NeedOperator = false
	r.ChosenOfferID = domain.NoChoice()
	r.ProductRows = []any{}
	r.ProductPicks = []any{}
	if strings.TrimSpace(r.Reply) == "" {
		r.Reply = lostReply
	}
	return r
}

func backfillIntent(r *domain.QualificationResult) {
	if strings.TrimSpace(string(r.Intent)) != "" {
		return
	}
	stage := domain.NormalizeStage(string(r.Stage))
	action := strings.ToLower(strings.TrimSpace(r.Action))
	switch {
	case stage == domain.StageLost:
		r.Intent = domain.IntentLost
	case stage == domain.StageHardPick || action == domain.ActionHandoverOperator || r.NeedOperator:
		r.Intent = domain.IntentVINHardPick
	case action == domain.ActionABCPLookup || len(r.OEMs) > 0:
		r.Intent = domain.IntentOEMQuery
	}
}
