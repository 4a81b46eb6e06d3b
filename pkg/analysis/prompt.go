package analysis

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/lookup"
)

// NotSpecified marks request fields the user did not provide.
const NotSpecified = "Not specified"

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

type promptData struct {
	Product, ProjectName, Channel, Market, Origin, Reference string
	Material, SizeTier, Pricing, TradeTerm, Priority         string
	Volume, Timeline, Certifications, Images, MarketContext  string

	HasReference, HasMaterial, HasSizeTier bool
	Notes                                  []string
}

// BuildPrompt renders the estimation prompt for req. Every field is either
// a concrete value or the NotSpecified marker.
func BuildPrompt(req domain.AnalysisRequest) string {
	d := promptData{
		Product:        orNotSpecified(req.ProductDescription),
		ProjectName:    orNotSpecified(req.ProjectName),
		Channel:        described(req.Channel, req.ChannelDescription),
		Market:         marketLine(req),
		Origin:         orNotSpecified(req.Origin),
		Reference:      "Not provided",
		Material:       orNotSpecified(req.Material),
		SizeTier:       orNotSpecified(req.SizeTier),
		Pricing:        pricingLine(req),
		TradeTerm:      bucketLabel(lookup.TradeTerm(req.TradeTerm)),
		Priority:       bucketLabel(lookup.Priority(req.RiskPriority)),
		Volume:         volumeLine(req),
		Timeline:       described(req.TimelineBucket, req.TimelineDescription),
		Certifications: orNotSpecified(strings.Join(req.Certifications, ", ")),
		Images:         strings.Join(req.ImageRefs, ", "),
		MarketContext:  lookup.MarketContext(lookup.Market(req.Market)),
		HasReference:   req.HasReference(),
		HasMaterial:    !lookup.IsUnspecified(req.Material),
		HasSizeTier:    !lookup.IsUnspecified(req.SizeTier),
		Notes:          notes(req),
	}
	if d.HasReference {
		d.Reference = req.Reference
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, d); err != nil {
		// The template and data are fixed; failure is a programming error.
		panic(fmt.Sprintf("analysis: render prompt: %v", err))
	}
	return b.String()
}

// notes are the conditional guidance lines.
func notes(req domain.AnalysisRequest) []string {
	var out []string
	if !lookup.IsUnspecified(req.PriceValue) {
		switch {
		case strings.Contains(strings.ToLower(req.PriceMetric), "landed"):
			out = append(out, "User's current landed cost: "+req.PriceValue+" (for reference)")
		case strings.Contains(strings.ToLower(req.PriceMetric), "retail"):
			out = append(out, "User's target retail price: "+req.PriceValue)
		case strings.Contains(strings.ToLower(req.PriceMetric), "margin"):
			out = append(out, "User's target margin: "+req.PriceValue)
		}
	}
	if req.VolumeBucket == "aggressive" {
		out = append(out, "Very high volume - consider economies of scale")
	}
	if req.MarketRegion == lookup.RegionEurope {
		out = append(out, "Target market: Europe - consider CE marking, VAT and EU/UK regulations")
	}
	if strings.EqualFold(req.Origin, "India") {
		out = append(out, "Sourcing from India - consider shipping times, export procedures and trade agreements")
	}
	if req.TradeTerm == "DDP" {
		out = append(out, "Trade terms: DDP (all-inclusive delivery)")
	}
	if req.RiskPriority == "maximize_margin" {
		out = append(out, "Priority: maximize margin - focus on cost optimization")
	}
	return out
}

func marketLine(req domain.AnalysisRequest) string {
	if req.Market == "" || req.Market == domain.Unspecified {
		return NotSpecified
	}
	return req.MarketLabel
}

func pricingLine(req domain.AnalysisRequest) string {
	if lookup.IsUnspecified(req.PriceMetric) {
		return NotSpecified
	}
	if lookup.IsUnspecified(req.PriceValue) {
		return req.PriceMetric
	}
	return req.PriceMetric + " - " + req.PriceValue
}

func volumeLine(req domain.AnalysisRequest) string {
	if req.MonthlyVolume > 0 {
		return fmt.Sprintf("%d units/month. %s", req.MonthlyVolume, req.VolumeDescription)
	}
	return described(req.VolumeBucket, req.VolumeDescription)
}

// described renders a bucket description, prefixed with the NotSpecified
// marker for the fallback bucket.
func described(code, description string) string {
	if code != "" && code != domain.Unspecified {
		return orNotSpecified(description)
	}
	if description == "" {
		return NotSpecified
	}
	return NotSpecified + ". " + description
}

func bucketLabel(b lookup.Bucket) string {
	if !b.Known() {
		return NotSpecified
	}
	return b.Label
}

func orNotSpecified(s string) string {
	if lookup.IsUnspecified(s) {
		return NotSpecified
	}
	return s
}
