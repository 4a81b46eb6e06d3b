package domain

// Financials is the headline cost estimate.
type Financials struct {
	EstimatedLandedCost float64 `json:"estimated_landed_cost" mapstructure:"estimated_landed_cost"`
	EstimatedMarginPct  float64 `json:"estimated_margin_pct" mapstructure:"estimated_margin_pct"`
	NetProfit           float64 `json:"net_profit" mapstructure:"net_profit"`
}

// CostBreakdown splits the landed cost per unit.
type CostBreakdown struct {
	FactoryEXW float64 `json:"factory_exw" mapstructure:"factory_exw"`
	Shipping   float64 `json:"shipping" mapstructure:"shipping"`
	Duty       float64 `json:"duty" mapstructure:"duty"`
	Packaging  float64 `json:"packaging" mapstructure:"packaging"`
	Customs    float64 `json:"customs" mapstructure:"customs"`
	Insurance  float64 `json:"insurance" mapstructure:"insurance"`
}

// ScaleTier is the unit economics at a given order quantity.
type ScaleTier struct {
	Qty      int     `json:"qty" mapstructure:"qty"`
	Mode     string  `json:"mode" mapstructure:"mode"`
	UnitCost float64 `json:"unit_cost" mapstructure:"unit_cost"`
	Margin   float64 `json:"margin" mapstructure:"margin"`
}

// RiskItem is a qualitative risk level with its reason.
type RiskItem struct {
	Level  string `json:"level" mapstructure:"level"`
	Reason string `json:"reason" mapstructure:"reason"`
}

// ComplianceRisk adds the estimated certification cost.
type ComplianceRisk struct {
	Level  string `json:"level" mapstructure:"level"`
	Reason string `json:"reason" mapstructure:"reason"`
	Cost   string `json:"cost,omitempty" mapstructure:"cost"`
}

// Risks groups the qualitative risk assessment.
type Risks struct {
	Duty       RiskItem       `json:"duty" mapstructure:"duty"`
	Supplier   RiskItem       `json:"supplier" mapstructure:"supplier"`
	Compliance ComplianceRisk `json:"compliance" mapstructure:"compliance"`
}

// DutyAnalysis is the tariff classification.
type DutyAnalysis struct {
	HSCode    string `json:"hs_code" mapstructure:"hs_code"`
	Rate      string `json:"rate" mapstructure:"rate"`
	Rationale string `json:"rationale" mapstructure:"rationale"`
}

// LogisticsInsight describes container loading efficiency.
type LogisticsInsight struct {
	EfficiencyScore   string `json:"efficiency_score" mapstructure:"efficiency_score"`
	ContainerLoading  string `json:"container_loading" mapstructure:"container_loading"`
	Advice            string `json:"advice" mapstructure:"advice"`
	UnitsPerContainer int    `json:"units_per_container,omitempty" mapstructure:"units_per_container"`
}

// MarketBenchmark compares against competitors in the target channel.
type MarketBenchmark struct {
	CompetitorPrice      string `json:"competitor_price" mapstructure:"competitor_price"`
	OurPriceAdvantage    string `json:"our_price_advantage" mapstructure:"our_price_advantage"`
	DifferentiationPoint string `json:"differentiation_point" mapstructure:"differentiation_point"`
}

// StrategicAdvice is the channel specific recommendation.
type StrategicAdvice struct {
	ForBusinessModel string `json:"for_business_model" mapstructure:"for_business_model"`
	KeyAction        string `json:"key_action" mapstructure:"key_action"`
}

// AnalysisResult is the normalized output of the analysis pipeline.
// OSINTRiskScore is nil only before the Fallback Injector has run.
type AnalysisResult struct {
	Financials       Financials        `json:"financials" mapstructure:"financials"`
	CostBreakdown    CostBreakdown     `json:"cost_breakdown" mapstructure:"cost_breakdown"`
	ScaleAnalysis    []ScaleTier       `json:"scale_analysis,omitempty" mapstructure:"scale_analysis"`
	Risks            Risks             `json:"risks" mapstructure:"risks"`
	DutyAnalysis     *DutyAnalysis     `json:"duty_analysis,omitempty" mapstructure:"duty_analysis"`
	LogisticsInsight *LogisticsInsight `json:"logistics_insight,omitempty" mapstructure:"logistics_insight"`
	MarketBenchmark  *MarketBenchmark  `json:"market_benchmark,omitempty" mapstructure:"market_benchmark"`
	StrategicAdvice  *StrategicAdvice  `json:"strategic_advice,omitempty" mapstructure:"strategic_advice"`
	ExecutiveSummary string            `json:"executive_summary,omitempty" mapstructure:"executive_summary"`
	OSINTRiskScore   *float64          `json:"osint_risk_score" mapstructure:"-"`
}
