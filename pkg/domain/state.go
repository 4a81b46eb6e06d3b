package domain

// Status is the lifecycle of a conversation.
type Status string

const (
	StatusActive Status = "active"
	StatusDone   Status = "done"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
)

// Message is a transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	NodeID  string `json:"node_id,omitempty"`
	Content string `json:"content"`
}

// ConversationState is the snapshot of an intake dialogue.
// Answers only grows as the conversation advances; Order holds the
// answered node ids in the order they were answered.
type ConversationState struct {
	ID            string            `json:"id,omitempty"`
	CurrentNodeID string            `json:"current_node_id"`
	Status        Status            `json:"status"`
	Answers       map[string]Answer `json:"answers"`
	Order         []string          `json:"order"`
	Defaults      map[string]Answer `json:"defaults,omitempty"`
	Messages      []Message         `json:"messages"`
	History       []string          `json:"history"`
	Outcome       string            `json:"outcome,omitempty"`

	// External is the onboarding context the conversation was started with.
	External *ExternalContext `json:"external,omitempty"`
}

// NewConversationState creates a clean state positioned at startNodeID.
func NewConversationState(id, startNodeID string) *ConversationState {
	return &ConversationState{
		ID:            id,
		CurrentNodeID: startNodeID,
		Status:        StatusActive,
		Answers:       make(map[string]Answer),
		Defaults:      make(map[string]Answer),
		History:       []string{startNodeID},
	}
}

// Terminated reports whether the conversation reached a terminal node.
func (s *ConversationState) Terminated() bool {
	return s.Status == StatusDone
}

// Answer returns the answer recorded for nodeID.
func (s *ConversationState) Answer(nodeID string) (Answer, bool) {
	a, ok := s.Answers[nodeID]
	return a, ok
}

// Clone returns a deep copy safe for independent mutation.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = make(map[string]Answer, len(s.Answers))
	for k, v := range s.Answers {
		v.Values = append([]string(nil), v.Values...)
		next.Answers[k] = v
	}
	next.Defaults = make(map[string]Answer, len(s.Defaults))
	for k, v := range s.Defaults {
		v.Values = append([]string(nil), v.Values...)
		next.Defaults[k] = v
	}
	next.Order = append([]string(nil), s.Order...)
	next.Messages = append([]Message(nil), s.Messages...)
	next.History = append([]string(nil), s.History...)
	if s.External != nil {
		ext := *s.External
		ext.TargetMarkets = append([]string(nil), s.External.TargetMarkets...)
		next.External = &ext
	}
	return &next
}
