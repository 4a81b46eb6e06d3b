package runtime

import (
	"fmt"

	"github.com/nexsupply/nexi/pkg/condition"
	"github.com/nexsupply/nexi/pkg/domain"
)

// resolveNextNodeID picks the target of the first conditional transition
// that holds, then the first unconditional one. A condition that fails to
// evaluate is logged and treated as false.
func (e *Engine) resolveNextNodeID(node *domain.QuestionNode, input domain.Answer, answers map[string]domain.Answer) (string, error) {
	env := condition.Env{Input: input, Answers: answers}

	for _, t := range node.Transitions {
		if t.Condition == "" {
			continue
		}
		ok, err := condition.Eval(t.Condition, env)
		if err != nil {
			e.logger.Warn("transition condition failed", "node_id", node.ID, "condition", t.Condition, "err", err)
			continue
		}
		if ok {
			return t.ToNodeID, nil
		}
	}

	for _, t := range node.Transitions {
		if t.Condition == "" {
			return t.ToNodeID, nil
		}
	}
	return "", fmt.Errorf("node %q has no transition for answer %q", node.ID, input.String())
}
