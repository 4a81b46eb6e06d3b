package intake

// Node ids of the sourcing graph read by the mapper.
const (
	NodeProduct       = "product"
	NodeReference     = "reference"
	NodeImages        = "images"
	NodeChannel       = "channel"
	NodeMarket        = "market"
	NodeOrigin        = "origin"
	NodeMaterial      = "material"
	NodeSizeTier      = "size_tier"
	NodePriceMetric   = "pricing_metric"
	NodePriceValue    = "pricing_value"
	NodeTradeTerm     = "trade_term"
	NodePriority      = "priority"
	NodeVolume        = "volume"
	NodeTimeline      = "timeline"
	NodeCertification = "certifications"
)

// DefaultOrigin is used when the user gave no manufacturing origin.
const DefaultOrigin = "China"
