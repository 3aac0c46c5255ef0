package usecase

import "github.com/Jhoseto/factcheckerAI-sub002/domain/model"

// Point pricing. Link audits use the fixed price regardless of duration;
// the fallback costs apply only when no estimate has been computed yet.
const (
	StandardBaseCost     = 5
	DeepBaseCost         = 10
	LinkAuditCost        = 5
	FallbackStandardCost = 5
	FallbackDeepCost     = 10

	// One pricing step per started block beyond the base allowance.
	standardStepSeconds = 300
	deepStepSeconds     = 150
)

// EstimateCost maps a video duration to the cost of both modes. Total for
// every non-negative duration and monotonic non-decreasing: longer media
// never costs less, and deep never costs less than standard.
func EstimateCost(durationSeconds int) *model.CostEstimate {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return &model.CostEstimate{
		Standard: model.ModeCost{PointsCost: StandardBaseCost + durationSeconds/standardStepSeconds},
		Deep:     model.ModeCost{PointsCost: DeepBaseCost + durationSeconds/deepStepSeconds},
	}
}

// CostForMode picks the cost of the selected mode out of an estimate,
// falling back to the fixed defaults when no estimate exists.
func CostForMode(estimate *model.CostEstimate, mode model.AuditMode) int {
	if estimate == nil {
		if mode == model.AuditModeDeep {
			return FallbackDeepCost
		}
		return FallbackStandardCost
	}
	if mode == model.AuditModeDeep {
		return estimate.Deep.PointsCost
	}
	return estimate.Standard.PointsCost
}
