package domain

import "strings"

// FunnelStage is the discrete phase of the lead-qualification conversation.
type FunnelStage string

const (
	// StageUnset is a sentinel for "no stage prescribed"; callers substitute
	// the current stage.
	StageUnset FunnelStage = ""

	StageNew      FunnelStage = "NEW"
	StagePricing  FunnelStage = "PRICING"
	StageContact  FunnelStage = "CONTACT"
	StageAddress  FunnelStage = "ADDRESS"
	StageFinal    FunnelStage = "FINAL"
	StageHardPick FunnelStage = "HARD_PICK"
	StageLost     FunnelStage = "LOST"
	StageInWork   FunnelStage = "IN_WORK"
)

var knownStages = map[FunnelStage]struct{}{
	StageNew:      {},
	StagePricing:  {},
	StageContact:  {},
	StageAddress:  {},
	StageFinal:    {},
	StageHardPick: {},
	StageLost:     {},
	StageInWork:   {},
}

// IsKnownStage reports whether stage is one of the funnel stages the Node bot
// core understands.
func IsKnownStage(stage FunnelStage) bool {
	_, ok := knownStages[stage]
	return ok
}

// NormalizeStage trims and upper-cases a raw stage string. Unknown values are
// returned as-is; the advisory model may propose out-of-enum stages and the
// caller decides how to treat them.
func NormalizeStage(raw string) FunnelStage {
	return FunnelStage(strings.ToUpper(strings.TrimSpace(raw)))
}
