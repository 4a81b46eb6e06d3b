package runtime

import (
	"strings"

	"github.com/nexsupply/nexi/pkg/condition"
	"github.com/nexsupply/nexi/pkg/domain"
)

// Prompt is what a host shows for the current node.
type Prompt struct {
	NodeID       string           `json:"node_id"`
	Kind         domain.InputKind `json:"kind"`
	Section      string           `json:"section,omitempty"`
	Text         string           `json:"text"`
	Help         string           `json:"help,omitempty"`
	Choices      []domain.Choice  `json:"choices,omitempty"`
	Required     bool             `json:"required"`
	AllowNotSure bool             `json:"allow_not_sure"`
	Terminal     bool             `json:"terminal"`

	// Default is the pre-filled answer accepted by an empty submission.
	Default      *domain.Answer `json:"default,omitempty"`
	DefaultLabel string         `json:"default_label,omitempty"`
	DefaultNote  string         `json:"default_note,omitempty"`
}

// Message renders the prompt as an assistant transcript entry.
func (p Prompt) Message() domain.Message {
	var b strings.Builder
	b.WriteString(p.Text)
	if p.Default != nil {
		b.WriteString("\n\n")
		b.WriteString(p.DefaultNote)
		b.WriteString(" (current: ")
		b.WriteString(p.DefaultLabel)
		b.WriteString(")")
	}
	return domain.Message{Role: domain.RoleAssistant, NodeID: p.NodeID, Content: b.String()}
}

// Prompt returns the prompt of the state's current node.
func (e *Engine) Prompt(state *domain.ConversationState) (Prompt, error) {
	node, err := e.node(state.CurrentNodeID)
	if err != nil {
		return Prompt{}, err
	}
	return e.render(node, state), nil
}

func (e *Engine) render(node *domain.QuestionNode, state *domain.ConversationState) Prompt {
	p := Prompt{
		NodeID:       node.ID,
		Kind:         node.Kind,
		Section:      node.Section,
		Text:         node.Prompt,
		Help:         node.Help,
		Choices:      append([]domain.Choice(nil), node.Choices...),
		Required:     node.Required,
		AllowNotSure: node.AllowNotSure,
		Terminal:     node.IsTerminal(),
	}

	env := condition.Env{Answers: state.Answers}
	for _, v := range node.Variants {
		ok, err := condition.Eval(v.Condition, env)
		if err != nil {
			e.logger.Warn("variant condition failed", "node_id", node.ID, "condition", v.Condition, "err", err)
			continue
		}
		if ok {
			p.Text = v.Prompt
			break
		}
	}

	if def, ok := state.Defaults[node.ID]; ok {
		p.Default = &def
		p.DefaultLabel = node.Display(def)
		p.DefaultNote = domain.PrefillNote
	}
	return p
}
