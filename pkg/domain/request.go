package domain

// ExternalContext carries onboarding settings captured outside the dialogue.
// All fields are optional.
type ExternalContext struct {
	ProjectName      string   `json:"project_name,omitempty"`
	MainChannel      string   `json:"main_channel,omitempty"`
	TargetMarkets    []string `json:"target_markets,omitempty"`
	YearlyVolumePlan string   `json:"yearly_volume_plan,omitempty"`
	TimelinePlan     string   `json:"timeline_plan,omitempty"`
}

// AnalysisRequest is the normalized input of the analysis pipeline.
// Every field holds a defined value once produced by the intake mapper.
type AnalysisRequest struct {
	ProductDescription string `json:"product_description"`
	ProjectName        string `json:"project_name,omitempty"`

	Channel            string `json:"channel"`
	ChannelDescription string `json:"channel_description"`
	Market             string `json:"market"`
	MarketLabel        string `json:"market_label"`
	MarketRegion       string `json:"market_region"`
	Origin             string `json:"origin"`

	// Reference is a supplier URL or company name, or NoReference.
	Reference string   `json:"reference"`
	ImageRefs []string `json:"image_refs,omitempty"`

	Material    string `json:"material"`
	SizeTier    string `json:"size_tier"`
	PriceMetric string `json:"price_metric"`
	PriceValue  string `json:"price_value"`
	TradeTerm   string `json:"trade_term"`

	RiskPriority string `json:"risk_priority"`

	MonthlyVolume     int    `json:"monthly_volume"`
	VolumeBucket      string `json:"volume_bucket"`
	VolumeDescription string `json:"volume_description"`

	TimelineBucket      string `json:"timeline_bucket"`
	TimelineDescription string `json:"timeline_description"`

	Certifications []string `json:"certifications,omitempty"`
}

// HasReference reports whether a reference identifier was provided.
func (r AnalysisRequest) HasReference() bool {
	return r.Reference != "" && r.Reference != NoReference
}
