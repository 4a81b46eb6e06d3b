package graph_test

import (
	"strings"
	"testing"

	"github.com/nexsupply/nexi/internal/presentation/graph"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/dsl"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallGraph(t *testing.T) *flow.Graph {
	t.Helper()
	b := dsl.New()
	b.Add("product").Ask("What product?").Label("Product").Required().Section("product").Go("call")
	b.Add("call").Choose("Book a call?", "yes_call", "no").Section("sales").
		Branch(`answers.call == 'yes_call'`, "thanks_followup").
		Go("thanks_report")
	b.Add("thanks_followup").Terminal(domain.IntentHigh, "Talk soon.")
	b.Add("thanks_report").Terminal(domain.IntentReportOnly, "Report on its way.")

	g, err := b.Build("product")
	require.NoError(t, err)
	return g
}

func TestGenerateMermaid(t *testing.T) {
	g := smallGraph(t)
	out := graph.GenerateMermaid(g, nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"header", []string{"graph TD\n"}},
		{"start shape", []string{`product(("Product *"))`}},
		{"choice shape", []string{`call[/"call"/]`}},
		{"terminal shape", []string{`thanks_followup(["thanks_followup"])`}},
		{"sections", []string{`subgraph section_product ["product"]`, `subgraph section_sales ["sales"]`}},
		{"edges", []string{
			"product --> call",
			`call -- "answers.call == 'yes_call'" --> thanks_followup`,
			"call --> thanks_report",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
	assert.NotContains(t, out, "classDef", "no overlay without state")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := smallGraph(t)
	state := domain.NewConversationState("c1", "product")
	state.History = []string{"product", "call", "ghost"}
	state.CurrentNodeID = "call"

	out := graph.GenerateMermaid(g, graph.OverlayFor(state))

	assert.Contains(t, out, "class product visited;")
	assert.Contains(t, out, "class call current;")
	assert.NotContains(t, out, "class call visited;")
	assert.NotContains(t, out, "ghost", "unknown history entries are ignored")
	assert.Equal(t, 1, strings.Count(out, "class product visited;"))
}

func TestGenerateMermaid_Sourcing(t *testing.T) {
	out := graph.GenerateMermaid(flow.Sourcing(), nil)
	for _, id := range flow.Sourcing().IDs() {
		assert.Contains(t, out, id)
	}
}
