package runtime

import "github.com/nexsupply/nexi/pkg/domain"

// SummaryItem is one answered question of the end-of-flow summary.
type SummaryItem struct {
	NodeID   string `json:"node_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Summary lists the answers of a conversation in the order they were given.
type Summary struct {
	Items   []SummaryItem `json:"items"`
	Outcome string        `json:"outcome,omitempty"`
	Done    bool          `json:"done"`
}

// Summary builds the deterministic recap of state. Hidden nodes and
// skipped optional questions are left out.
func (e *Engine) Summary(state *domain.ConversationState) Summary {
	s := Summary{Items: []SummaryItem{}, Outcome: state.Outcome, Done: state.Terminated()}
	for _, id := range state.Order {
		node, ok := e.graph.Node(id)
		if !ok || node.HideInSummary {
			continue
		}
		a := state.Answers[id]
		if a.Type == domain.AnswerSkipped {
			continue
		}
		s.Items = append(s.Items, SummaryItem{
			NodeID:   id,
			Question: summaryQuestion(node),
			Answer:   node.Display(a),
		})
	}
	return s
}

func summaryQuestion(node *domain.QuestionNode) string {
	if node.SummaryLabel != "" {
		return node.SummaryLabel
	}
	return node.Prompt
}
