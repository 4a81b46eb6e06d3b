package lookup

import (
	"fmt"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Market regions.
const (
	RegionNorthAmerica = "north_america"
	RegionEurope       = "europe"
	RegionAsia         = "asia"
	RegionOceania      = "oceania"
	RegionOther        = "other"
)

var channels = newTable(
	Bucket{
		Code:        domain.Unspecified,
		Label:       "Other / unspecified channel",
		Description: "Other or unspecified channel – treat as a hybrid, and avoid FBA-specific assumptions unless obviously needed.",
	},
	[]Bucket{
		{Code: "amazon_fba", Label: "Amazon FBA", Description: "Amazon FBA – needs FBA-compliant prep, carton labels, and packaging for Amazon warehouses."},
		{Code: "shopify_dtc", Label: "Shopify / DTC", Description: "Shopify DTC – mostly parcel shipments direct to consumers, focus on per-unit margin and 3PL-friendly packing."},
		{Code: "tiktok_shop", Label: "TikTok Shop", Description: "TikTok Shop or social commerce – similar to DTC but more promo-driven volume swings."},
		{Code: "retail_wholesale", Label: "Retail / Wholesale", Description: "Retail / Wholesale – bulk cartons to retailers or distributors, focus on case-pack, master cartons, and pallet shipping."},
		{Code: "b2b_distributor", Label: "B2B distributor", Description: "B2B distributor channel – larger, less frequent orders focused on stable supply and pallet-level pricing."},
		{Code: "multiple", Label: "Multiple / not decided", Description: "Multiple channels or not decided yet – keep the analysis channel-agnostic."},
	},
	map[string]string{
		"amazon": "amazon_fba", "fba": "amazon_fba",
		"shopify": "shopify_dtc", "dtc": "shopify_dtc",
		"tiktok": "tiktok_shop",
		"retail": "retail_wholesale", "wholesale": "retail_wholesale",
		"b2b": "b2b_distributor", "distributor": "b2b_distributor",
		"not_sure": "multiple", "multiple_channels": "multiple",
	},
)

var markets = newTable(
	Bucket{Code: domain.Unspecified, Label: "Other / unspecified market", Region: RegionOther},
	[]Bucket{
		{Code: "US", Label: "United States", Region: RegionNorthAmerica},
		{Code: "CA", Label: "Canada", Region: RegionNorthAmerica},
		{Code: "MX", Label: "Mexico", Region: RegionNorthAmerica},
		{Code: "EU", Label: "Europe (EU)", Region: RegionEurope},
		{Code: "UK", Label: "United Kingdom", Region: RegionEurope},
		{Code: "JP", Label: "Japan", Region: RegionAsia},
		{Code: "KR", Label: "South Korea", Region: RegionAsia},
		{Code: "KR_JP", Label: "Korea / Japan", Region: RegionAsia},
		{Code: "SEA", Label: "Southeast Asia", Region: RegionAsia},
		{Code: "AU", Label: "Australia and New Zealand", Region: RegionOceania},
	},
	map[string]string{
		"united_states": "US", "usa": "US",
		"canada": "CA", "mexico": "MX",
		"europe": "EU", "european_union": "EU",
		"united_kingdom": "UK", "gb": "UK",
		"japan": "JP", "south_korea": "KR", "korea": "KR",
		"southeast_asia": "SEA", "asean": "SEA",
		"australia_new_zealand": "AU", "australia": "AU",
	},
)

var origins = newTable(
	Bucket{Code: domain.Unspecified, Label: "Not specified"},
	[]Bucket{
		{Code: "china", Label: "China"},
		{Code: "vietnam", Label: "Vietnam"},
		{Code: "india", Label: "India"},
		{Code: "south_korea", Label: "South Korea"},
		{Code: "mexico", Label: "Mexico"},
		{Code: "other_asia", Label: "Other Asia"},
	},
	map[string]string{"cn": "china", "vn": "vietnam", "in": "india", "korea": "south_korea", "kr": "south_korea"},
)

var volumes = newTable(
	Bucket{Code: domain.Unspecified, Label: "Not specified", Description: "Volume not decided yet – assume a reasonable mid-range launch rather than extreme scale."},
	[]Bucket{
		{Code: "test", Label: "Test run", Description: "Test volume – small pilot orders, roughly a few hundred units per year (for example ~50 units/month). Use conservative MOQs and sampling-focused assumptions."},
		{Code: "small_launch", Label: "Small launch", Description: "Small launch – around a few thousand units per year (for example ~200 units/month)."},
		{Code: "steady", Label: "Steady", Description: "Steady volume – around 10,000–15,000 units per year (for example ~1,000 units/month)."},
		{Code: "aggressive", Label: "Aggressive growth", Description: "Aggressive growth – tens of thousands of units per year (for example 5,000+ units/month)."},
	},
	map[string]string{"test_run": "test", "pilot": "test", "scale": "steady", "growth": "aggressive"},
)

var timelines = newTable(
	Bucket{Code: domain.Unspecified, Label: "Not specified", Description: "Timeline not specified – assume a standard production and shipping schedule."},
	[]Bucket{
		{Code: "within_1_month", Label: "Within 1 month", Description: "Needs first shipment as soon as possible (rush timeline – highlight lead time risks)."},
		{Code: "within_3_months", Label: "Within 2-3 months", Description: "Wants first shipment within 1–2 months."},
		{Code: "after_3_months", Label: "After 3 months", Description: "Okay with 3–4 months if pricing and quality are better."},
		{Code: "flexible", Label: "Flexible", Description: "Timeline is flexible – do not over-optimize for speed."},
	},
	map[string]string{"asap": "within_1_month", "rush": "within_1_month", "2_3_months": "within_3_months", "3_4_months": "after_3_months"},
)

var priorities = newTable(
	Bucket{Code: "balanced", Label: "Balanced"},
	[]Bucket{
		{Code: "lowest_cost", Label: "Lowest Cost"},
		{Code: "fastest_speed", Label: "Fastest Speed"},
		{Code: "balanced", Label: "Balanced"},
		{Code: "maximize_margin", Label: "Maximize Margin"},
	},
	map[string]string{"cost": "lowest_cost", "speed": "fastest_speed", "margin": "maximize_margin", "max_margin": "maximize_margin"},
)

var tradeTerms = newTable(
	Bucket{Code: domain.Unspecified, Label: "Not specified"},
	[]Bucket{
		{Code: "DDP", Label: "DDP (Delivered Duty Paid)"},
		{Code: "FOB", Label: "FOB (Free On Board)"},
		{Code: "EXW", Label: "EXW (Ex-Works)"},
	},
	map[string]string{"ex_works": "EXW", "exworks": "EXW"},
)

// Channel resolves a sales channel code or label.
func Channel(raw string) Bucket { return channels.resolve(raw) }

// Market resolves a target market code or label.
func Market(raw string) Bucket { return markets.resolve(raw) }

// marketGroups folds single-country markets into the combined market the
// intake question offers.
var marketGroups = map[string]string{"JP": "KR_JP", "KR": "KR_JP"}

// MarketGroup returns the combined market b belongs to, or b itself.
func MarketGroup(b Bucket) Bucket {
	if code, ok := marketGroups[b.Code]; ok {
		return markets.resolve(code)
	}
	return b
}

// Origin resolves a manufacturing origin.
func Origin(raw string) Bucket { return origins.resolve(raw) }

// Volume resolves a volume plan code or label.
func Volume(raw string) Bucket { return volumes.resolve(raw) }

// Timeline resolves a timeline code or label.
func Timeline(raw string) Bucket { return timelines.resolve(raw) }

// Priority resolves a cost/speed priority. Unknown values fall back to balanced.
func Priority(raw string) Bucket { return priorities.resolve(raw) }

// TradeTerm resolves an incoterm.
func TradeTerm(raw string) Bucket { return tradeTerms.resolve(raw) }

// volumeThresholds maps monthly units to a bucket; the first upper bound
// greater than the quantity wins.
var volumeThresholds = []struct {
	below int
	code  string
}{
	{100, "test"},
	{500, "small_launch"},
	{3000, "steady"},
}

// VolumeForUnits buckets a monthly unit quantity.
func VolumeForUnits(units int) Bucket {
	if units <= 0 {
		return volumes.fallback
	}
	for _, th := range volumeThresholds {
		if units < th.below {
			return volumes.resolve(th.code)
		}
	}
	return volumes.resolve("aggressive")
}

var yearlyPlanUnits = map[string]int{
	"test":         50,
	"small_launch": 200,
	"steady":       1000,
	"aggressive":   5000,
	"not_sure":     500,
}

// MonthlyUnitsFromYearlyPlan converts an onboarding volume plan to a
// representative monthly quantity. Unknown plans yield 0.
func MonthlyUnitsFromYearlyPlan(plan string) int {
	return yearlyPlanUnits[Normalize(plan)]
}

// MarketContext describes a market with the freight and duty caveats of its region.
func MarketContext(b Bucket) string {
	if !b.Known() {
		return "Target market not specified. Use a generic export assumption when estimating freight and duties."
	}
	switch b.Region {
	case RegionNorthAmerica:
		return fmt.Sprintf("Primary target market: %s (North America). Use this when estimating freight and duties.", b.Label)
	case RegionEurope:
		return fmt.Sprintf("Primary target market: %s (Europe/UK). Note that VAT and duties can differ by country.", b.Label)
	case RegionAsia:
		return fmt.Sprintf("Primary target market: %s (Asia). Freight might be intra-Asia or export-from-Asia depending on the combination.", b.Label)
	}
	return fmt.Sprintf("Primary target market: %s. Use this when estimating freight and duties.", b.Label)
}

// IsUnspecified reports whether a free-text value carries no information.
func IsUnspecified(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "skip", "not specified", "none", strings.ToLower(domain.SentinelSkipped), strings.ToLower(domain.SentinelNotSure), domain.Unspecified:
		return true
	}
	return false
}
