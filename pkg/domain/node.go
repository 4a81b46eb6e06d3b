package domain

import "strings"

// InputKind defines what a node accepts as an answer.
type InputKind string

const (
	// KindText accepts free text.
	KindText InputKind = "text"
	// KindSingleChoice accepts one of the node's choices (by value, label or 1-based index).
	KindSingleChoice InputKind = "single_choice"
	// KindMultiChoice accepts one or more choices, comma separated or as a list.
	KindMultiChoice InputKind = "multi_choice"
	// KindNumber accepts a non-negative number.
	KindNumber InputKind = "number"
	// KindFile accepts an opaque file reference (URL or upload id).
	KindFile InputKind = "file"
	// KindEnd marks a terminal node; it accepts nothing.
	KindEnd InputKind = "end"
)

// Choice is a selectable option of a choice node.
type Choice struct {
	Value string `json:"value" yaml:"value" mapstructure:"value"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// DisplayLabel returns the label, falling back to the value.
func (c Choice) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Value
}

// PrefillKey names the external context field a node may be pre-filled from.
type PrefillKey string

const (
	PrefillChannel  PrefillKey = "channel"
	PrefillMarket   PrefillKey = "market"
	PrefillVolume   PrefillKey = "volume"
	PrefillTimeline PrefillKey = "timeline"
)

// QuestionNode is a single step of the intake dialogue.
type QuestionNode struct {
	ID      string    `json:"id" yaml:"id" mapstructure:"id"`
	Kind    InputKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Section string    `json:"section,omitempty" yaml:"section,omitempty" mapstructure:"section"`

	// Prompt is the question text. Variants may replace it depending on
	// earlier answers.
	Prompt   string          `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	Help     string          `json:"help,omitempty" yaml:"help,omitempty" mapstructure:"help"`
	Variants []PromptVariant `json:"variants,omitempty" yaml:"variants,omitempty" mapstructure:"variants"`

	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`

	// Required nodes reject empty input and the skip sentinel.
	Required bool `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`

	// AllowNotSure enables the NOT_SURE sentinel. NotSureMessage, when set,
	// is emitted as a system message after the sentinel is accepted.
	AllowNotSure   bool   `json:"allow_not_sure,omitempty" yaml:"allow_not_sure,omitempty" mapstructure:"allow_not_sure"`
	NotSureMessage string `json:"not_sure_message,omitempty" yaml:"not_sure_message,omitempty" mapstructure:"not_sure_message"`

	Prefill PrefillKey `json:"prefill,omitempty" yaml:"prefill,omitempty" mapstructure:"prefill"`

	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`

	// SummaryLabel overrides the prompt in the end-of-flow summary.
	SummaryLabel  string `json:"summary_label,omitempty" yaml:"summary_label,omitempty" mapstructure:"summary_label"`
	HideInSummary bool   `json:"hide_in_summary,omitempty" yaml:"hide_in_summary,omitempty" mapstructure:"hide_in_summary"`

	// Outcome is recorded on the state when a terminal node is reached.
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty" mapstructure:"outcome"`
}

// IsTerminal reports whether reaching the node ends the conversation.
func (n *QuestionNode) IsTerminal() bool {
	return n.Kind == KindEnd
}

// FindChoice returns the choice with the given value.
func (n *QuestionNode) FindChoice(value string) (Choice, bool) {
	for _, c := range n.Choices {
		if c.Value == value {
			return c, true
		}
	}
	return Choice{}, false
}

// Display renders an answer for people: choice labels instead of values,
// "Not sure" and "Skipped" for the sentinels.
func (n *QuestionNode) Display(a Answer) string {
	switch a.Type {
	case AnswerSkipped:
		return "Skipped"
	case AnswerNotSure:
		return "Not sure"
	case AnswerChoice:
		if c, ok := n.FindChoice(a.Text); ok {
			return c.DisplayLabel()
		}
	case AnswerMulti:
		labels := make([]string, 0, len(a.Values))
		for _, v := range a.Values {
			if c, ok := n.FindChoice(v); ok {
				labels = append(labels, c.DisplayLabel())
			} else {
				labels = append(labels, v)
			}
		}
		return strings.Join(labels, ", ")
	}
	return a.String()
}
