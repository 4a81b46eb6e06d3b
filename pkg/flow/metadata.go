package flow

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/nexsupply/nexi/pkg/domain"
)

// Definition is the document layout of a flow file.
type Definition struct {
	Version string         `mapstructure:"version"`
	Start   string         `mapstructure:"start"`
	Nodes   []NodeMetadata `mapstructure:"nodes"`
}

// NodeMetadata is the YAML shape of a node. It accepts a few shorthands
// that QuestionNode does not: "next" for a single unconditional
// transition and plain strings as choices.
type NodeMetadata struct {
	ID             string                 `mapstructure:"id"`
	Kind           string                 `mapstructure:"kind"`
	Section        string                 `mapstructure:"section"`
	Prompt         string                 `mapstructure:"prompt"`
	Help           string                 `mapstructure:"help"`
	Variants       []domain.PromptVariant `mapstructure:"variants"`
	Choices        []any                  `mapstructure:"choices"`
	Required       bool                   `mapstructure:"required"`
	AllowNotSure   bool                   `mapstructure:"allow_not_sure"`
	NotSureMessage string                 `mapstructure:"not_sure_message"`
	Prefill        string                 `mapstructure:"prefill"`
	Transitions    []domain.Transition    `mapstructure:"transitions"`
	Next           string                 `mapstructure:"next"`
	SummaryLabel   string                 `mapstructure:"summary_label"`
	HideInSummary  bool                   `mapstructure:"hide_in_summary"`
	Outcome        string                 `mapstructure:"outcome"`
}

func decodeDefinition(raw map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode flow definition: %w", err)
	}
	return &def, nil
}

// ToNode converts the metadata to a domain node.
func (m NodeMetadata) ToNode() (domain.QuestionNode, error) {
	n := domain.QuestionNode{
		ID:             m.ID,
		Kind:           domain.InputKind(m.Kind),
		Section:        m.Section,
		Prompt:         m.Prompt,
		Help:           m.Help,
		Variants:       m.Variants,
		Required:       m.Required,
		AllowNotSure:   m.AllowNotSure,
		NotSureMessage: m.NotSureMessage,
		Prefill:        domain.PrefillKey(m.Prefill),
		Transitions:    append([]domain.Transition(nil), m.Transitions...),
		SummaryLabel:   m.SummaryLabel,
		HideInSummary:  m.HideInSummary,
		Outcome:        m.Outcome,
	}
	if n.Kind == "" {
		n.Kind = domain.KindText
	}
	if m.Next != "" {
		n.Transitions = append(n.Transitions, domain.Transition{ToNodeID: m.Next})
	}

	for i, c := range m.Choices {
		switch v := c.(type) {
		case string:
			n.Choices = append(n.Choices, domain.Choice{Value: v, Label: v})
		case map[string]any:
			var choice domain.Choice
			if err := mapstructure.Decode(v, &choice); err != nil {
				return n, fmt.Errorf("node %q: choice #%d: %w", m.ID, i, err)
			}
			if choice.Value == "" {
				return n, fmt.Errorf("node %q: choice #%d missing value", m.ID, i)
			}
			n.Choices = append(n.Choices, choice)
		default:
			return n, fmt.Errorf("node %q: invalid choice type %T", m.ID, c)
		}
	}
	return n, nil
}
