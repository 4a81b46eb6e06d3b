// Package flow holds the question graph of the intake dialogue: its
// in-memory representation, the YAML definition format and the
// structural checks every graph must pass before an engine runs it.
package flow

import (
	"fmt"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Graph is an immutable, validated question graph.
type Graph struct {
	start string
	nodes map[string]*domain.QuestionNode
	order []string
}

// New builds a graph from nodes in declaration order and validates it.
func New(start string, nodes ...domain.QuestionNode) (*Graph, error) {
	g := &Graph{
		start: start,
		nodes: make(map[string]*domain.QuestionNode, len(nodes)),
	}
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("node #%d missing id", i)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		g.nodes[n.ID] = &n
		g.order = append(g.order, n.ID)
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Start returns the id of the first node.
func (g *Graph) Start() string {
	return g.start
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*domain.QuestionNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns a copy of all nodes in declaration order.
func (g *Graph) Nodes() []domain.QuestionNode {
	out := make([]domain.QuestionNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// IDs returns node ids in declaration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}
