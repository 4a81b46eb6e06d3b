package dsl

import "github.com/nexsupply/nexi/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.QuestionNode
	builder *Builder
}

// Ask makes the node a free text question.
func (n *NodeBuilder) Ask(prompt string) *NodeBuilder {
	n.node.Kind = domain.KindText
	n.node.Prompt = prompt
	return n
}

// Choose makes the node a single choice question. Choices are given as
// values; use Labels to attach display labels.
func (n *NodeBuilder) Choose(prompt string, values ...string) *NodeBuilder {
	n.node.Kind = domain.KindSingleChoice
	n.node.Prompt = prompt
	n.node.Choices = choices(values)
	return n
}

// ChooseMany makes the node a multi choice question.
func (n *NodeBuilder) ChooseMany(prompt string, values ...string) *NodeBuilder {
	n.Choose(prompt, values...)
	n.node.Kind = domain.KindMultiChoice
	return n
}

// Number makes the node a numeric question.
func (n *NodeBuilder) Number(prompt string) *NodeBuilder {
	n.node.Kind = domain.KindNumber
	n.node.Prompt = prompt
	return n
}

// File makes the node a file reference question.
func (n *NodeBuilder) File(prompt string) *NodeBuilder {
	n.node.Kind = domain.KindFile
	n.node.Prompt = prompt
	return n
}

// Labels sets display labels for choices, matched by value.
func (n *NodeBuilder) Labels(labels map[string]string) *NodeBuilder {
	for i, c := range n.node.Choices {
		if l, ok := labels[c.Value]; ok {
			n.node.Choices[i].Label = l
		}
	}
	return n
}

// Required rejects empty answers and skips.
func (n *NodeBuilder) Required() *NodeBuilder {
	n.node.Required = true
	return n
}

// NotSure accepts the NOT_SURE sentinel, replying with message if not empty.
func (n *NodeBuilder) NotSure(message string) *NodeBuilder {
	n.node.AllowNotSure = true
	n.node.NotSureMessage = message
	return n
}

// Prefill marks the node as pre-fillable from an external context field.
func (n *NodeBuilder) Prefill(key domain.PrefillKey) *NodeBuilder {
	n.node.Prefill = key
	return n
}

// Variant replaces the prompt when condition holds.
func (n *NodeBuilder) Variant(condition, prompt string) *NodeBuilder {
	n.node.Variants = append(n.node.Variants, domain.PromptVariant{Condition: condition, Prompt: prompt})
	return n
}

// Section groups the node for presentation.
func (n *NodeBuilder) Section(name string) *NodeBuilder {
	n.node.Section = name
	return n
}

// Label sets the question text used in the summary.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.SummaryLabel = label
	return n
}

// Hidden excludes the node from the summary.
func (n *NodeBuilder) Hidden() *NodeBuilder {
	n.node.HideInSummary = true
	return n
}

// Go adds an unconditional transition to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		ToNodeID: target,
	})
	return n
}

// Branch adds a conditional transition to the target node.
func (n *NodeBuilder) Branch(condition string, target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Condition: condition,
		ToNodeID:  target,
	})
	return n
}

// Terminal marks the node as the end of the flow.
func (n *NodeBuilder) Terminal(outcome, message string) *NodeBuilder {
	n.node.Kind = domain.KindEnd
	n.node.Outcome = outcome
	n.node.Prompt = message
	n.node.Transitions = nil
	return n
}

// Build returns the underlying node.
func (n *NodeBuilder) Build() domain.QuestionNode {
	return n.node
}

func choices(values []string) []domain.Choice {
	out := make([]domain.Choice, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Choice{Value: v, Label: v})
	}
	return out
}
