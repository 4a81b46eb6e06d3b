package runtime

import (
	"fmt"
	"log/slog"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
)

// Engine is the conversation flow engine. It is a pure transformer of
// ConversationState: every call returns a new state and never mutates
// its argument, so one Engine may serve any number of conversations.
type Engine struct {
	graph        *flow.Graph
	logger       *slog.Logger
	maxInputSize int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxInputSize caps the byte length of a single text answer.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInputSize = n
	}
}

// NewEngine creates an engine for a validated graph.
func NewEngine(graph *flow.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:        graph,
		logger:       logging.NewNop(),
		maxInputSize: maxInputSize(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine runs.
func (e *Engine) Graph() *flow.Graph {
	return e.graph
}

// Step describes the outcome of an Advance call.
type Step struct {
	// Next is the prompt of the new current node; nil once Done.
	Next *Prompt
	Done bool
	// Messages are the transcript entries appended by this call.
	Messages []domain.Message
}

// Start creates a conversation positioned at the start node. External
// context, when given, is turned into editable defaults for the nodes
// that declare a prefill key.
func (e *Engine) Start(id string, ext *domain.ExternalContext) (*domain.ConversationState, error) {
	state := domain.NewConversationState(id, e.graph.Start())
	state.Defaults = prefill(e.graph, ext)
	if ext != nil {
		copied := *ext
		copied.TargetMarkets = append([]string(nil), ext.TargetMarkets...)
		state.External = &copied
	}

	p, err := e.Prompt(state)
	if err != nil {
		return nil, err
	}
	state.Messages = append(state.Messages, p.Message())
	return state, nil
}

// Advance records raw as the answer to the current node and moves to the
// next node. A rejected answer returns a *domain.ValidationError and the
// input state unchanged.
func (e *Engine) Advance(state *domain.ConversationState, raw any) (*domain.ConversationState, Step, error) {
	if state == nil {
		return nil, Step{}, fmt.Errorf("state is nil")
	}
	if state.Terminated() {
		return state, Step{Done: true}, domain.ErrTerminated
	}

	node, err := e.node(state.CurrentNodeID)
	if err != nil {
		return state, Step{}, err
	}

	answer, err := e.resolveEffectiveInput(node, state, raw)
	if err != nil {
		e.logger.Debug("answer rejected", "node_id", node.ID, "err", err)
		return state, Step{}, err
	}

	next := state.Clone()
	before := len(next.Messages)

	next.Answers[node.ID] = answer
	if !contains(next.Order, node.ID) {
		next.Order = append(next.Order, node.ID)
	}
	next.Messages = append(next.Messages, domain.Message{Role: domain.RoleUser, NodeID: node.ID, Content: node.Display(answer)})

	if answer.Type == domain.AnswerNotSure && node.NotSureMessage != "" {
		next.Messages = append(next.Messages, domain.Message{Role: domain.RoleSystem, NodeID: node.ID, Content: node.NotSureMessage})
	}

	targetID, err := e.resolveNextNodeID(node, answer, next.Answers)
	if err != nil {
		return state, Step{}, err
	}
	target, err := e.node(targetID)
	if err != nil {
		return state, Step{}, err
	}

	next.CurrentNodeID = target.ID
	next.History = append(next.History, target.ID)
	e.logger.Debug("advanced", "from", node.ID, "to", target.ID, "answer_type", answer.Type)

	step := Step{}
	if target.IsTerminal() {
		next.Status = domain.StatusDone
		next.Outcome = target.Outcome
		next.Messages = append(next.Messages, domain.Message{Role: domain.RoleAssistant, NodeID: target.ID, Content: target.Prompt})
		step.Done = true
	} else {
		p := e.render(target, next)
		next.Messages = append(next.Messages, p.Message())
		step.Next = &p
	}
	step.Messages = append([]domain.Message(nil), next.Messages[before:]...)
	return next, step, nil
}

func (e *Engine) node(id string) (*domain.QuestionNode, error) {
	n, ok := e.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNode, id)
	}
	return n, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
