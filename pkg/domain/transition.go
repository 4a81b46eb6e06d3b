package domain

// Transition defines a rule to move from one node to another.
type Transition struct {
	ToNodeID string `json:"to" yaml:"to" mapstructure:"to"`

	// Condition is an expression over the current input and the accumulated
	// answers, e.g. "answers.call != 'yes_call'". Transitions with a
	// condition are tried in order before the unconditional fallback.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
}

// PromptVariant replaces a node's prompt when its condition holds.
type PromptVariant struct {
	Condition string `json:"condition" yaml:"condition" mapstructure:"condition"`
	Prompt    string `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
}
