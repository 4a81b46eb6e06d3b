package flow

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/nexsupply/nexi/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed sourcing.yaml
var sourcingDefinition []byte

// Sourcing returns the built-in sourcing intake graph.
func Sourcing() *Graph {
	g, err := Parse(sourcingDefinition)
	if err != nil {
		panic(fmt.Sprintf("built-in flow is invalid: %v", err))
	}
	return g
}

// SourcingDefinition returns the raw YAML of the built-in graph.
func SourcingDefinition() []byte {
	return append([]byte(nil), sourcingDefinition...)
}

// Load reads and parses a flow definition file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a YAML flow definition and validates the resulting graph.
func Parse(data []byte) (*Graph, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty flow definition")
	}

	def, err := decodeDefinition(raw)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.QuestionNode, 0, len(def.Nodes))
	for _, m := range def.Nodes {
		n, err := m.ToNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	start := def.Start
	if start == "" && len(nodes) > 0 {
		start = nodes[0].ID
	}
	return New(start, nodes...)
}
