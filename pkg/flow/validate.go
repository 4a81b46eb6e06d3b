package flow

import (
	"fmt"
	"strings"

	"github.com/nexsupply/nexi/pkg/condition"
	"github.com/nexsupply/nexi/pkg/domain"
)

// Validate crawls the graph from its start node and reports every
// structural problem at once:
//
//   - the start node and every transition target exist;
//   - every condition parses;
//   - every non-terminal node has an unconditional fallback, so advance
//     always has a successor;
//   - terminal nodes have no transitions;
//   - choice nodes declare choices;
//   - at least one terminal node is reachable from the start.
func Validate(g *Graph) error {
	var errs []string
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if _, ok := g.nodes[g.start]; !ok {
		return fmt.Errorf("start node %q not found", g.start)
	}

	for _, id := range g.order {
		n := g.nodes[id]
		switch n.Kind {
		case domain.KindText, domain.KindNumber, domain.KindFile:
		case domain.KindSingleChoice, domain.KindMultiChoice:
			if len(n.Choices) == 0 {
				report("node %q: choice node without choices", id)
			}
		case domain.KindEnd:
			if len(n.Transitions) > 0 {
				report("node %q: terminal node must not have transitions", id)
			}
		default:
			report("node %q: unknown kind %q", id, n.Kind)
		}

		if n.Required && n.AllowNotSure {
			report("node %q: required node cannot accept NOT_SURE", id)
		}

		for _, v := range n.Variants {
			if _, err := condition.Parse(v.Condition); err != nil {
				report("node %q: variant: %v", id, err)
			}
		}

		hasFallback := false
		for _, t := range n.Transitions {
			if _, ok := g.nodes[t.ToNodeID]; !ok {
				report("node %q: missing node %q", id, t.ToNodeID)
			}
			if t.Condition == "" {
				hasFallback = true
				continue
			}
			if _, err := condition.Parse(t.Condition); err != nil {
				report("node %q: %v", id, err)
			}
		}
		if !n.IsTerminal() && !hasFallback {
			report("node %q: no unconditional transition", id)
		}
	}

	visited := map[string]bool{}
	queue := []string{g.start}
	terminalReachable := false
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		if n.IsTerminal() {
			terminalReachable = true
		}
		for _, t := range n.Transitions {
			if !visited[t.ToNodeID] {
				queue = append(queue, t.ToNodeID)
			}
		}
	}
	if !terminalReachable {
		report("no terminal node reachable from %q", g.start)
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}

// Unreachable lists nodes that cannot be reached from the start node.
// They are not an error, but usually a mistake in the definition.
func Unreachable(g *Graph) []string {
	visited := map[string]bool{}
	queue := []string{g.start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if n, ok := g.nodes[id]; ok {
			for _, t := range n.Transitions {
				queue = append(queue, t.ToNodeID)
			}
		}
	}
	var out []string
	for _, id := range g.order {
		if !visited[id] {
			out = append(out, id)
		}
	}
	return out
}
