package lookup_test

import (
	"testing"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/lookup"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "shopify_dtc", lookup.Normalize("Shopify / DTC"))
	assert.Equal(t, "europe", lookup.Normalize("Europe (EU)"))
	assert.Equal(t, "amazon_fba", lookup.Normalize("  Amazon FBA "))
	assert.Equal(t, "eu", lookup.Normalize("(EU)"), "a value that is only a note keeps it")
}

func TestChannel(t *testing.T) {
	tests := []struct {
		raw  string
		code string
	}{
		{"amazon_fba", "amazon_fba"},
		{"Amazon FBA", "amazon_fba"},
		{"Shopify / DTC", "shopify_dtc"},
		{"TikTok Shop", "tiktok_shop"},
		{"not_sure", "multiple"},
		{"carrier pigeon", domain.Unspecified},
		{"", domain.Unspecified},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			b := lookup.Channel(tt.raw)
			assert.Equal(t, tt.code, b.Code)
			assert.NotEmpty(t, b.Description)
		})
	}
}

func TestMarket(t *testing.T) {
	assert.Equal(t, "US", lookup.Market("united_states").Code)
	assert.Equal(t, "EU", lookup.Market("Europe (EU)").Code)
	assert.Equal(t, "UK", lookup.Market("uk").Code)
	assert.Equal(t, lookup.RegionEurope, lookup.Market("UK").Region)

	unknown := lookup.Market("atlantis")
	assert.False(t, unknown.Known())
	assert.Contains(t, lookup.MarketContext(unknown), "not specified")
	assert.Contains(t, lookup.MarketContext(lookup.Market("EU")), "VAT")
}

func TestMarketGroup(t *testing.T) {
	assert.Equal(t, "KR_JP", lookup.MarketGroup(lookup.Market("japan")).Code)
	assert.Equal(t, "KR_JP", lookup.MarketGroup(lookup.Market("korea")).Code)
	assert.Equal(t, "US", lookup.MarketGroup(lookup.Market("US")).Code)
	assert.False(t, lookup.MarketGroup(lookup.Market("atlantis")).Known())
}

func TestVolumeForUnits(t *testing.T) {
	tests := []struct {
		units int
		code  string
	}{
		{0, domain.Unspecified},
		{-5, domain.Unspecified},
		{50, "test"},
		{99, "test"},
		{100, "small_launch"},
		{1000, "steady"},
		{3000, "aggressive"},
		{50000, "aggressive"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, lookup.VolumeForUnits(tt.units).Code, "units=%d", tt.units)
	}
}

func TestMonthlyUnitsFromYearlyPlan(t *testing.T) {
	assert.Equal(t, 50, lookup.MonthlyUnitsFromYearlyPlan("test"))
	assert.Equal(t, 1000, lookup.MonthlyUnitsFromYearlyPlan("steady"))
	assert.Equal(t, 500, lookup.MonthlyUnitsFromYearlyPlan("not_sure"))
	assert.Equal(t, 0, lookup.MonthlyUnitsFromYearlyPlan("galactic"))
}

func TestTimelineAndPriority(t *testing.T) {
	assert.Equal(t, "within_1_month", lookup.Timeline("Within 1 month").Code)
	assert.Equal(t, domain.Unspecified, lookup.Timeline("someday").Code)
	assert.Equal(t, "balanced", lookup.Priority("").Code, "priority falls back to balanced")
	assert.Equal(t, "lowest_cost", lookup.Priority("Lowest Cost").Code)
	assert.Equal(t, "EXW", lookup.TradeTerm("Ex-Works").Code)
}

func TestIsUnspecified(t *testing.T) {
	for _, v := range []string{"", " skip ", "SKIPPED", "NOT_SURE", "Not specified", "none"} {
		assert.True(t, lookup.IsUnspecified(v), v)
	}
	assert.False(t, lookup.IsUnspecified("silicone"))
}
