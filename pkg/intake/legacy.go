package intake

import (
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
)

// UserContext is the flat context object sent by older clients instead of
// conversation answers.
type UserContext struct {
	ProductInfo  string `json:"product_info,omitempty"`
	SalesChannel string `json:"sales_channel,omitempty"`
	// ProductSpecs combines material and size as "Material, Size".
	ProductSpecs string `json:"product_specs,omitempty"`

	ProjectName   string `json:"project_name,omitempty"`
	BusinessModel string `json:"business_model,omitempty"`
	Channel       string `json:"channel,omitempty"`
	Market        string `json:"market,omitempty"`
	Origin        string `json:"origin,omitempty"`
	RefLink       string `json:"ref_link,omitempty"`
	MaterialType  string `json:"material_type,omitempty"`
	SizeTier      string `json:"size_tier,omitempty"`
	PricingMetric string `json:"pricing_metric,omitempty"`
	PricingValue  string `json:"pricing_value,omitempty"`
	TradeTerm     string `json:"trade_term,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Volume        string `json:"volume,omitempty"`
	Timeline      string `json:"timeline,omitempty"`
}

// IsZero reports whether no field is set.
func (uc UserContext) IsZero() bool {
	return uc == UserContext{}
}

// Answers converts the context to a raw answer map for StateFromRaw and an
// onboarding context for the values that are plans rather than answers.
func (uc UserContext) Answers() (map[string]any, *domain.ExternalContext) {
	material, size := uc.MaterialType, uc.SizeTier
	if specs := strings.TrimSpace(uc.ProductSpecs); specs != "" && !strings.EqualFold(specs, "skip") {
		parts := strings.Split(specs, ",")
		if material == "" {
			material = strings.TrimSpace(parts[0])
		}
		if len(parts) >= 2 && size == "" {
			size = strings.TrimSpace(parts[1])
		}
	}

	raw := map[string]any{
		NodeProduct:     firstNonEmpty(uc.ProductInfo, uc.ProjectName),
		NodeChannel:     firstNonEmpty(uc.Channel, uc.SalesChannel),
		NodeMarket:      uc.Market,
		NodeOrigin:      uc.Origin,
		NodeReference:   uc.RefLink,
		NodeMaterial:    material,
		NodeSizeTier:    size,
		NodePriceMetric: uc.PricingMetric,
		NodePriceValue:  uc.PricingValue,
		NodeTradeTerm:   uc.TradeTerm,
		NodePriority:    uc.Priority,
		NodeTimeline:    uc.Timeline,
	}
	ext := &domain.ExternalContext{ProjectName: uc.ProjectName}
	if _, ok := parseLeadingNumber(uc.Volume); ok {
		raw[NodeVolume] = uc.Volume
	} else {
		ext.YearlyVolumePlan = uc.Volume
	}
	return raw, ext
}

// FromUserContext maps a legacy context straight to a request.
func (m *Mapper) FromUserContext(uc UserContext) (domain.AnalysisRequest, error) {
	graph := m.graph
	if graph == nil {
		graph = flow.Sourcing()
	}
	raw, ext := uc.Answers()
	state, err := StateFromRaw(graph, raw)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	req, err := m.ToRequest(state, ext)
	if err != nil {
		return domain.AnalysisRequest{}, &domain.ValidationError{NodeID: "product_info", Reason: "project_name or product_info is required"}
	}
	return req, nil
}
