// Package logistics estimates 20ft container loading from a product size tier.
package logistics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Efficiency scores.
const (
	EfficiencyHigh   = "High"
	EfficiencyMedium = "Medium"
	EfficiencyLow    = "Low"
)

// UnknownTier is reported for labels that match no documented tier.
const UnknownTier = "unknown"

// Loading is the container loading estimate for a size tier.
type Loading struct {
	Tier              string
	UnitsPerContainer int
	Category          string
	EfficiencyScore   string
	Advice            string
}

// ContainerLoading renders the estimate as "Est. 3,500 units per 20ft container (Optimized)".
func (l Loading) ContainerLoading() string {
	return fmt.Sprintf("Est. %s units per 20ft container (%s)", groupThousands(l.UnitsPerContainer), l.Category)
}

// Insight converts the estimate to the logistics block of an analysis result.
func (l Loading) Insight() domain.LogisticsInsight {
	return domain.LogisticsInsight{
		EfficiencyScore:   l.EfficiencyScore,
		ContainerLoading:  l.ContainerLoading(),
		Advice:            l.Advice,
		UnitsPerContainer: l.UnitsPerContainer,
	}
}

type tier struct {
	code     string
	keywords []string
	loading  Loading
}

var tiers = []tier{
	{
		code:     "xs",
		keywords: []string{"small envelope"},
		loading: Loading{Tier: "XS", UnitsPerContainer: 15000, Category: "High Density", EfficiencyScore: EfficiencyHigh,
			Advice: "Very small units load densely and keep freight per unit low. Reinforce inner packaging to prevent breakage."},
	},
	{
		code:     "s",
		keywords: []string{"shoe box"},
		loading: Loading{Tier: "S", UnitsPerContainer: 3500, Category: "Optimized", EfficiencyScore: EfficiencyMedium,
			Advice: "Carton size fits standard FBA and LTL handling. Pallet loading can be maximized."},
	},
	{
		code:     "m",
		keywords: []string{"microwave"},
		loading: Loading{Tier: "M", UnitsPerContainer: 1500, Category: "Standard", EfficiencyScore: EfficiencyMedium,
			Advice: "Follows standard logistics assumptions. No particular risk, but there is room to optimize carton dimensions."},
	},
	{
		code:     "l",
		keywords: []string{"suitcase"},
		loading: Loading{Tier: "L", UnitsPerContainer: 600, Category: "Oversize", EfficiencyScore: EfficiencyLow,
			Advice: "Large cartons raise freight per unit. Check oversize fees on your channel and consider nesting or flat-pack designs."},
	},
	{
		code:     "xl",
		keywords: []string{"large appliance"},
		loading: Loading{Tier: "XL", UnitsPerContainer: 200, Category: "Bulky", EfficiencyScore: EfficiencyLow,
			Advice: "Very bulky units make ocean freight expensive. Reduce CBM or consider knock-down (KD) packaging."},
	},
}

var unknown = Loading{
	Tier:              UnknownTier,
	UnitsPerContainer: 1500,
	Category:          "Standard",
	EfficiencyScore:   EfficiencyMedium,
	Advice:            "Follows standard logistics assumptions. No particular risk, but there is room to optimize carton dimensions.",
}

// Compute estimates container loading for a size tier label such as
// "S (Shoe Box size)", "xl" or "Large appliance". Labels matching no
// tier return the unknown tier estimate.
func Compute(label string) Loading {
	clean := strings.ToLower(strings.TrimSpace(label))
	if clean == "" {
		return unknown
	}
	code := leadingToken(clean)
	for _, t := range tiers {
		if code == t.code {
			return t.loading
		}
	}
	for _, t := range tiers {
		for _, kw := range t.keywords {
			if strings.Contains(clean, kw) {
				return t.loading
			}
		}
	}
	return unknown
}

// leadingToken returns the first word of s, so "s (shoe box size)" yields "s".
func leadingToken(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == '-' || r == ':'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
