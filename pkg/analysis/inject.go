package analysis

import (
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/logistics"
	"github.com/nexsupply/nexi/pkg/lookup"
)

// Fields the Fallback Injector may fill. Nothing else in a result is ever
// written, in particular none of the MandatoryGroups.
const (
	FieldContainerLoading = "logistics_insight.container_loading"
	FieldOSINTRiskScore   = "osint_risk_score"
)

// InjectableFields lists every field the Fallback Injector may fill.
var InjectableFields = []string{FieldContainerLoading, FieldOSINTRiskScore}

// Supplier risk level to fallback score.
const (
	ScoreHigh    = 75
	ScoreMedium  = 50
	ScoreDefault = 25
)

// Normalize is the Fallback Injector. It never fails and is idempotent.
func Normalize(result domain.AnalysisResult, req domain.AnalysisRequest) domain.AnalysisResult {
	out, _ := Inject(result, req)
	return out
}

// Inject is Normalize that also reports which fields were filled.
func Inject(result domain.AnalysisResult, req domain.AnalysisRequest) (domain.AnalysisResult, []string) {
	var injected []string
	if repairContainerLoading(&result, req) {
		injected = append(injected, FieldContainerLoading)
	}
	if repairRiskScore(&result) {
		injected = append(injected, FieldOSINTRiskScore)
	}
	return result, injected
}

// repairContainerLoading fills the container loading figure from the
// request's size tier when the upstream left it out. Non-empty upstream
// values are kept.
func repairContainerLoading(r *domain.AnalysisResult, req domain.AnalysisRequest) bool {
	if lookup.IsUnspecified(req.SizeTier) {
		return false
	}
	if r.LogisticsInsight != nil && strings.TrimSpace(r.LogisticsInsight.ContainerLoading) != "" {
		return false
	}

	computed := logistics.Compute(req.SizeTier).Insight()
	if r.LogisticsInsight == nil {
		r.LogisticsInsight = &computed
		return true
	}

	li := *r.LogisticsInsight
	li.ContainerLoading = computed.ContainerLoading
	if strings.TrimSpace(li.EfficiencyScore) == "" {
		li.EfficiencyScore = computed.EfficiencyScore
	}
	if strings.TrimSpace(li.Advice) == "" {
		li.Advice = computed.Advice
	}
	if li.UnitsPerContainer == 0 {
		li.UnitsPerContainer = computed.UnitsPerContainer
	}
	r.LogisticsInsight = &li
	return true
}

// repairRiskScore replaces a missing or out of range score with the
// fallback for the supplier risk level.
func repairRiskScore(r *domain.AnalysisResult) bool {
	if s := r.OSINTRiskScore; s != nil && *s >= 0 && *s <= 100 {
		return false
	}
	score := FallbackScore(r.Risks.Supplier.Level)
	r.OSINTRiskScore = &score
	return true
}

// FallbackScore maps a qualitative supplier risk level to a score:
// High 75, Medium 50, anything else 25.
func FallbackScore(level string) float64 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "high":
		return ScoreHigh
	case "medium":
		return ScoreMedium
	}
	return ScoreDefault
}
