package runtime

import (
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/nexsupply/nexi/pkg/lookup"
)

// prefill derives editable defaults from onboarding settings for every node
// that declares a prefill key. Values that do not map onto one of the
// node's choices are dropped.
func prefill(g *flow.Graph, ext *domain.ExternalContext) map[string]domain.Answer {
	defaults := make(map[string]domain.Answer)
	if ext == nil {
		return defaults
	}

	for _, n := range g.Nodes() {
		node := n
		var (
			a  domain.Answer
			ok bool
		)
		switch node.Prefill {
		case domain.PrefillChannel:
			a, ok = choiceDefault(&node, lookup.Channel(ext.MainChannel))
		case domain.PrefillMarket:
			if len(ext.TargetMarkets) > 0 {
				b := lookup.Market(ext.TargetMarkets[0])
				if a, ok = choiceDefault(&node, b); !ok {
					a, ok = choiceDefault(&node, lookup.MarketGroup(b))
				}
			}
		case domain.PrefillTimeline:
			a, ok = choiceDefault(&node, lookup.Timeline(ext.TimelinePlan))
		case domain.PrefillVolume:
			if units := lookup.MonthlyUnitsFromYearlyPlan(ext.YearlyVolumePlan); units > 0 && node.Kind == domain.KindNumber {
				a, ok = domain.NumberAnswer(float64(units)), true
			}
		}
		if ok {
			defaults[node.ID] = a
		}
	}
	return defaults
}

func choiceDefault(node *domain.QuestionNode, b lookup.Bucket) (domain.Answer, bool) {
	if !b.Known() {
		return domain.Answer{}, false
	}
	if _, ok := node.FindChoice(b.Code); !ok {
		return domain.Answer{}, false
	}
	return domain.ChoiceAnswer(b.Code), true
}
