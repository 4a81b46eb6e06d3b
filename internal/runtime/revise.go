package runtime

import (
	"fmt"

	"github.com/nexsupply/nexi/pkg/domain"
)

// ReviewSection is the section whose nodes allow earlier answers to be revised.
const ReviewSection = "review"

// Revise replaces the answer of an already answered node while the
// conversation waits on a review node. The revision is rejected when it
// would change the path between the revised node and the review node,
// since the nodes on a new path were never asked.
func (e *Engine) Revise(state *domain.ConversationState, nodeID string, raw any) (*domain.ConversationState, error) {
	if state == nil {
		return nil, fmt.Errorf("state is nil")
	}
	if state.Terminated() {
		return state, domain.ErrTerminated
	}

	current, err := e.node(state.CurrentNodeID)
	if err != nil {
		return state, err
	}
	if current.Section != ReviewSection {
		return state, &domain.ValidationError{NodeID: nodeID, Reason: "answers can only be revised from the review step"}
	}

	node, err := e.node(nodeID)
	if err != nil {
		return state, err
	}
	if node.Section == ReviewSection || !contains(state.Order, nodeID) {
		return state, &domain.ValidationError{NodeID: nodeID, Reason: "only answered questions can be revised"}
	}

	answer, err := e.resolveEffectiveInput(node, state, raw)
	if err != nil {
		return state, err
	}

	next := state.Clone()
	next.Answers[nodeID] = answer

	before, err := e.walk(nodeID, current.ID, state.Answers)
	if err != nil {
		return state, err
	}
	after, err := e.walk(nodeID, current.ID, next.Answers)
	if err != nil || !samePath(before, after) {
		return state, &domain.ValidationError{
			NodeID: nodeID,
			Reason: "this change opens different follow-up questions; restart the conversation to change it",
			Value:  node.Display(answer),
		}
	}

	next.Messages = append(next.Messages, domain.Message{
		Role:    domain.RoleSystem,
		NodeID:  nodeID,
		Content: fmt.Sprintf("Updated %s: %s", summaryQuestion(node), node.Display(answer)),
	})
	e.logger.Debug("answer revised", "node_id", nodeID, "answer_type", answer.Type)
	return next, nil
}

// walk replays transitions from fromID until stopID using the recorded
// answers and returns the visited node ids.
func (e *Engine) walk(fromID, stopID string, answers map[string]domain.Answer) ([]string, error) {
	path := []string{fromID}
	id := fromID
	for steps := 0; id != stopID; steps++ {
		if steps > len(e.graph.IDs()) {
			return nil, fmt.Errorf("no path from %q to %q", fromID, stopID)
		}
		node, err := e.node(id)
		if err != nil {
			return nil, err
		}
		a, ok := answers[id]
		if !ok {
			return nil, fmt.Errorf("node %q was never answered", id)
		}
		if id, err = e.resolveNextNodeID(node, a, answers); err != nil {
			return nil, err
		}
		path = append(path, id)
	}
	return path, nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
