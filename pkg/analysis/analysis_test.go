package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/logistics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
  "financials": {"estimated_landed_cost": 4.2, "estimated_margin_pct": 38.5, "net_profit": 6.1},
  "cost_breakdown": {"factory_exw": 2.1, "shipping": 0.9, "duty": "0.35", "packaging": 0.3, "customs": 0.25, "insurance": 0.05},
  "scale_analysis": [{"qty": 1000, "mode": "Sea", "unit_cost": 4.2, "margin": 38.5}],
  "risks": {
    "duty": {"level": "Low", "reason": "HS 3926.90"},
    "supplier": {"level": "Medium", "reason": "Many vendors"},
    "compliance": {"level": "Low", "reason": "No certification", "cost": 300}
  },
  "logistics_insight": {"efficiency_score": "High", "container_loading": "Est. 9,000 units per 20ft container", "advice": "Flat pack"},
  "osint_risk_score": 42,
  "executive_summary": "Viable."
}`

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences(`  {"a":1} `))
}

func TestValidate(t *testing.T) {
	r, err := Validate("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, 4.2, r.Financials.EstimatedLandedCost)
	assert.Equal(t, 0.35, r.CostBreakdown.Duty, "numeric strings are accepted")
	assert.Equal(t, "300", r.Risks.Compliance.Cost)
	require.Len(t, r.ScaleAnalysis, 1)
	assert.Equal(t, 1000, r.ScaleAnalysis[0].Qty)
	require.NotNil(t, r.OSINTRiskScore)
	assert.Equal(t, 42.0, *r.OSINTRiskScore)
	assert.Nil(t, r.DutyAnalysis)
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"empty", "```json\n```", "empty response"},
		{"not json", "Sorry, I can't help with that.", "not a JSON object"},
		{"array", `[1, 2]`, "not a JSON object"},
		{"missing financials", `{"cost_breakdown": {"factory_exw": 1}}`, "financials"},
		{"missing cost breakdown", `{"financials": {"net_profit": 1}}`, "cost_breakdown"},
		{"null group", `{"financials": null, "cost_breakdown": {}}`, "financials"},
		{"wrong types", `{"financials": {"net_profit": "a lot"}, "cost_breakdown": {}}`, "unexpected field types"},
		{"mistyped breakdown", `{"financials": {}, "cost_breakdown": {"duty": {"rate": 1}}}`, "cost_breakdown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			var merr *domain.MalformedResponseError
			require.ErrorAs(t, err, &merr)
			assert.Contains(t, merr.Reason, tt.reason)
			assert.Equal(t, domain.KindMalformedResponse, domain.KindOf(err))
		})
	}
}

func TestValidate_OptionalBlocks(t *testing.T) {
	const base = `{"financials": {"net_profit": 6.1}, "cost_breakdown": {"factory_exw": 2.1}, %s}`
	tests := []struct {
		block string
		value string
		check func(t *testing.T, r domain.AnalysisResult)
	}{
		{"scale_analysis", `[{"qty": "1,000 units", "mode": "Sea"}]`, func(t *testing.T, r domain.AnalysisResult) { assert.Nil(t, r.ScaleAnalysis) }},
		{"risks", `"low overall"`, func(t *testing.T, r domain.AnalysisResult) { assert.Equal(t, domain.Risks{}, r.Risks) }},
		{"duty_analysis", `"HS 3926.90"`, func(t *testing.T, r domain.AnalysisResult) { assert.Nil(t, r.DutyAnalysis) }},
		{"logistics_insight", `"Standard loading applies"`, func(t *testing.T, r domain.AnalysisResult) { assert.Nil(t, r.LogisticsInsight) }},
		{"market_benchmark", `"$12 on Amazon"`, func(t *testing.T, r domain.AnalysisResult) { assert.Nil(t, r.MarketBenchmark) }},
		{"strategic_advice", `"Launch on Amazon"`, func(t *testing.T, r domain.AnalysisResult) { assert.Nil(t, r.StrategicAdvice) }},
		{"executive_summary", `{"text": "Viable."}`, func(t *testing.T, r domain.AnalysisResult) { assert.Empty(t, r.ExecutiveSummary) }},
	}
	for _, tt := range tests {
		t.Run(tt.block, func(t *testing.T) {
			raw := strings.Replace(base, "%s", `"`+tt.block+`": `+tt.value, 1)
			r, dropped, err := ValidateBlocks(raw)
			require.NoError(t, err, "a mistyped optional block is not a malformed response")
			assert.Equal(t, []string{tt.block}, dropped)
			assert.Equal(t, 6.1, r.Financials.NetProfit)
			assert.Equal(t, 2.1, r.CostBreakdown.FactoryEXW)
			tt.check(t, r)
		})
	}

	t.Run("dropped logistics block is repaired", func(t *testing.T) {
		raw := strings.Replace(base, "%s", `"logistics_insight": "Standard loading applies"`, 1)
		r, err := Validate(raw)
		require.NoError(t, err)
		got := Normalize(r, domain.AnalysisRequest{SizeTier: "S (Shoe Box size)"})
		require.NotNil(t, got.LogisticsInsight)
		assert.Equal(t, logistics.Compute("S (Shoe Box size)").Insight(), *got.LogisticsInsight)
	})

	t.Run("well formed blocks are kept", func(t *testing.T) {
		_, dropped, err := ValidateBlocks(validResponse)
		require.NoError(t, err)
		assert.Empty(t, dropped)
	})
}

func TestValidate_RiskScoreParsing(t *testing.T) {
	base := `{"financials": {}, "cost_breakdown": {}, "osint_risk_score": %s}`
	tests := []struct {
		raw  string
		want *float64
	}{
		{"55", ptr(55)},
		{`"61"`, ptr(61)},
		{`"80%"`, ptr(80)},
		{`"unknown"`, nil},
		{"null", nil},
		{"true", nil},
		{"140", ptr(140)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r, err := Validate(strings.Replace(base, "%s", tt.raw, 1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.OSINTRiskScore)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestNormalize_ContainerRepair(t *testing.T) {
	req := domain.AnalysisRequest{SizeTier: "S (Shoe Box size)"}
	parsed := domain.AnalysisResult{OSINTRiskScore: ptr(10)}

	got := Normalize(parsed, req)
	require.NotNil(t, got.LogisticsInsight)
	assert.Equal(t, logistics.Compute("S (Shoe Box size)").Insight(), *got.LogisticsInsight)
	assert.Nil(t, parsed.LogisticsInsight, "input is not mutated")

	t.Run("partial block keeps upstream values", func(t *testing.T) {
		parsed := domain.AnalysisResult{LogisticsInsight: &domain.LogisticsInsight{EfficiencyScore: "Low", Advice: "Use pallets"}}
		got := Normalize(parsed, req)
		assert.Equal(t, "Est. 3,500 units per 20ft container (Optimized)", got.LogisticsInsight.ContainerLoading)
		assert.Equal(t, "Low", got.LogisticsInsight.EfficiencyScore)
		assert.Equal(t, "Use pallets", got.LogisticsInsight.Advice)
		assert.Empty(t, parsed.LogisticsInsight.ContainerLoading)
	})

	t.Run("upstream value is never overwritten", func(t *testing.T) {
		parsed := domain.AnalysisResult{LogisticsInsight: &domain.LogisticsInsight{ContainerLoading: "Est. 9,000 units"}}
		got := Normalize(parsed, req)
		assert.Equal(t, "Est. 9,000 units", got.LogisticsInsight.ContainerLoading)
		assert.Empty(t, got.LogisticsInsight.Advice)
	})

	t.Run("no size hint", func(t *testing.T) {
		for _, tier := range []string{"", domain.Unspecified, "skip", domain.SentinelNotSure} {
			got := Normalize(domain.AnalysisResult{}, domain.AnalysisRequest{SizeTier: tier})
			assert.Nil(t, got.LogisticsInsight, tier)
		}
	})
}

func TestNormalize_RiskScoreRepair(t *testing.T) {
	r, err := Validate(`{"financials": {}, "cost_breakdown": {}, "osint_risk_score": "unknown", "risks": {"supplier": {"level": "High"}}}`)
	require.NoError(t, err)
	got := Normalize(r, domain.AnalysisRequest{})
	require.NotNil(t, got.OSINTRiskScore)
	assert.Equal(t, 75.0, *got.OSINTRiskScore)

	tests := []struct {
		level string
		score *float64
		want  float64
	}{
		{"Medium", nil, 50},
		{" low ", nil, 25},
		{"", nil, 25},
		{"Severe", nil, 25},
		{"High", ptr(-3), 75},
		{"Medium", ptr(101), 50},
		{"High", ptr(0), 0},
		{"High", ptr(100), 100},
	}
	for _, tt := range tests {
		in := domain.AnalysisResult{OSINTRiskScore: tt.score}
		in.Risks.Supplier.Level = tt.level
		got := Normalize(in, domain.AnalysisRequest{})
		require.NotNil(t, got.OSINTRiskScore)
		assert.Equal(t, tt.want, *got.OSINTRiskScore, "level %q", tt.level)
		assert.GreaterOrEqual(t, *got.OSINTRiskScore, 0.0)
		assert.LessOrEqual(t, *got.OSINTRiskScore, 100.0)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	parsed, err := Validate(`{"financials": {"net_profit": 3}, "cost_breakdown": {"duty": 1}, "risks": {"supplier": {"level": "Medium"}}}`)
	require.NoError(t, err)

	for _, req := range []domain.AnalysisRequest{
		{SizeTier: "XL (Large appliance)"},
		{SizeTier: "weird"},
		{},
	} {
		once, injected := Inject(parsed, req)
		twice, again := Inject(once, req)
		assert.Equal(t, once, twice)
		assert.NotEmpty(t, injected)
		assert.Empty(t, again, "nothing left to inject")
		assert.Equal(t, parsed.Financials, once.Financials)
		assert.Equal(t, parsed.CostBreakdown, once.CostBreakdown)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(domain.AnalysisRequest{
		ProductDescription: "silicone phone case",
		Channel:            domain.Unspecified,
		Market:             domain.Unspecified,
		Reference:          domain.NoReference,
		Material:           domain.Unspecified,
		SizeTier:           domain.Unspecified,
		PriceMetric:        domain.Unspecified,
		PriceValue:         domain.Unspecified,
		TradeTerm:          domain.Unspecified,
		VolumeBucket:       domain.Unspecified,
		TimelineBucket:     domain.Unspecified,
	})
	assert.Contains(t, p, "- Product Info: silicone phone case")
	assert.Contains(t, p, "- Target Market: Not specified")
	assert.Contains(t, p, "- Material Type: Not specified")
	assert.Contains(t, p, "- Reference Link: Not provided")
	assert.NotContains(t, p, "CRITICAL: USER PROVIDED REFERENCE LINK")
	assert.NotContains(t, p, "SIZE TIER:")

	p = BuildPrompt(domain.AnalysisRequest{
		ProductDescription: "yoga mat",
		Market:             "EU",
		MarketLabel:        "Europe (EU)",
		MarketRegion:       "europe",
		Origin:             "India",
		Reference:          "https://acme.en.alibaba.com/product/1.html",
		Material:           "TPE",
		SizeTier:           "L (Suitcase size)",
		PriceMetric:        "Target margin %",
		PriceValue:         "40%",
		TradeTerm:          "DDP",
		RiskPriority:       "maximize_margin",
		VolumeBucket:       "aggressive",
		MonthlyVolume:      8000,
	})
	for _, want := range []string{
		"CRITICAL: USER PROVIDED REFERENCE LINK: https://acme.en.alibaba.com/product/1.html",
		"MATERIAL TYPE: TPE",
		"SIZE TIER: L (Suitcase size)",
		"- Pricing Information: Target margin % - 40%",
		"User's target margin: 40%",
		"Very high volume",
		"consider CE marking",
		"Sourcing from India",
		"Trade terms: DDP",
		"Priority: maximize margin",
		"- Volume: 8000 units/month.",
		"(Europe/UK)",
	} {
		assert.Contains(t, p, want)
	}
}

var errBoom = errors.New("boom")
