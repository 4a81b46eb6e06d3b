package dsl

import (
	"fmt"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.QuestionNode{
			ID:   id,
			Kind: domain.KindText,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles and validates the graph, starting at start.
func (b *Builder) Build(start string) (*flow.Graph, error) {
	nodes := make([]domain.QuestionNode, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].node)
	}

	g, err := flow.New(start, nodes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// MustBuild is Build for graphs known to be valid, such as test fixtures.
func (b *Builder) MustBuild(start string) *flow.Graph {
	g, err := b.Build(start)
	if err != nil {
		panic(err)
	}
	return g
}
