package intake

import (
	"log/slog"
	"math"
	"strings"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/nexsupply/nexi/pkg/lookup"
)

// Mapper builds analysis requests from conversation answers.
type Mapper struct {
	graph         *flow.Graph
	defaultOrigin string
	logger        *slog.Logger
}

// Option configures the Mapper.
type Option func(*Mapper)

// WithDefaultOrigin sets the origin used when none was given.
func WithDefaultOrigin(origin string) Option {
	return func(m *Mapper) {
		if origin = strings.TrimSpace(origin); origin != "" {
			m.defaultOrigin = origin
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// NewMapper creates a mapper for graphs shaped like the sourcing flow.
// The graph is only used to render choice labels.
func NewMapper(graph *flow.Graph, opts ...Option) *Mapper {
	m := &Mapper{
		graph:         graph,
		defaultOrigin: DefaultOrigin,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ToRequest maps state and the optional onboarding context to a request.
// The only failure is a missing product description.
func (m *Mapper) ToRequest(state *domain.ConversationState, ext *domain.ExternalContext) (domain.AnalysisRequest, error) {
	if state == nil {
		state = &domain.ConversationState{}
	}
	if ext == nil {
		ext = &domain.ExternalContext{}
	}
	a := answers(state.Answers)

	product, ok := a.text(NodeProduct)
	if !ok {
		return domain.AnalysisRequest{}, &domain.ValidationError{NodeID: NodeProduct, Reason: "a product description is required"}
	}

	req := domain.AnalysisRequest{
		ProductDescription: product,
		ProjectName:        firstNonEmpty(ext.ProjectName, product),
		Reference:          domain.NoReference,
		Material:           domain.Unspecified,
		SizeTier:           domain.Unspecified,
		PriceMetric:        domain.Unspecified,
		PriceValue:         domain.Unspecified,
	}

	channel := lookup.Channel(a.pick(NodeChannel, ext.MainChannel))
	req.Channel, req.ChannelDescription = channel.Code, channel.Description

	var extMarket string
	if len(ext.TargetMarkets) > 0 {
		extMarket = ext.TargetMarkets[0]
	}
	market := lookup.Market(a.pick(NodeMarket, extMarket))
	req.Market, req.MarketLabel, req.MarketRegion = market.Code, market.Label, market.Region

	req.Origin = m.defaultOrigin
	if raw, ok := a.text(NodeOrigin); ok {
		if b := lookup.Origin(raw); b.Known() {
			req.Origin = b.Label
		} else {
			req.Origin = raw
		}
	}

	if ref, ok := a.text(NodeReference); ok && !lookup.IsUnspecified(ref) {
		req.Reference = ref
	}
	if img, ok := a.text(NodeImages); ok {
		req.ImageRefs = []string{img}
	}
	if v, ok := a.text(NodeMaterial); ok {
		req.Material = v
	}
	if _, ok := a.text(NodeSizeTier); ok {
		req.SizeTier = m.display(NodeSizeTier, state.Answers[NodeSizeTier])
	}
	if _, ok := a.text(NodePriceMetric); ok {
		req.PriceMetric = m.display(NodePriceMetric, state.Answers[NodePriceMetric])
		if v, ok := a.text(NodePriceValue); ok {
			req.PriceValue = v
		}
	}

	term := lookup.TradeTerm(a.pick(NodeTradeTerm, ""))
	req.TradeTerm = term.Code
	req.RiskPriority = lookup.Priority(a.pick(NodePriority, "")).Code

	switch vol, ok := state.Answers[NodeVolume]; {
	case ok && vol.Type == domain.AnswerNumber:
		req.MonthlyVolume = units(vol.Number)
		b := lookup.VolumeForUnits(req.MonthlyVolume)
		req.VolumeBucket, req.VolumeDescription = b.Code, b.Description
	default:
		b := lookup.Volume(ext.YearlyVolumePlan)
		req.MonthlyVolume = lookup.MonthlyUnitsFromYearlyPlan(ext.YearlyVolumePlan)
		req.VolumeBucket, req.VolumeDescription = b.Code, b.Description
	}

	timeline := lookup.Timeline(a.pick(NodeTimeline, ext.TimelinePlan))
	req.TimelineBucket, req.TimelineDescription = timeline.Code, timeline.Description

	if certs, ok := state.Answers[NodeCertification]; ok && certs.Type == domain.AnswerMulti {
		req.Certifications = append([]string(nil), certs.Values...)
	}

	m.logger.Debug("request mapped", "channel", req.Channel, "market", req.Market, "volume_bucket", req.VolumeBucket, "has_reference", req.HasReference())
	return req, nil
}

func (m *Mapper) display(nodeID string, a domain.Answer) string {
	if m.graph != nil {
		if node, ok := m.graph.Node(nodeID); ok {
			return node.Display(a)
		}
	}
	return a.String()
}

type answers map[string]domain.Answer

// text returns the answer's canonical value when it is explicit.
func (a answers) text(id string) (string, bool) {
	ans, ok := a[id]
	if !ok || ans.IsZero() || ans.IsSentinel() {
		return "", false
	}
	s := strings.TrimSpace(ans.String())
	return s, s != ""
}

// pick prefers the explicit answer over the fallback.
func (a answers) pick(id, fallback string) string {
	if v, ok := a.text(id); ok {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// units converts a stored number answer, clamped to [0, domain.MaxNumber].
func units(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= domain.MaxNumber:
		return domain.MaxNumber
	}
	return int(f)
}
