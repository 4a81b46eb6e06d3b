package graph

import (
	"fmt"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
)

// Overlay contains conversation state to highlight on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor builds the overlay of a conversation.
func OverlayFor(state *domain.ConversationState) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{VisitedNodes: state.History, CurrentNode: state.CurrentNodeID}
}

// GenerateMermaid produces a Mermaid flowchart of the question graph.
// Nodes are grouped by section and shaped by kind:
//   - Start: ((Circle))
//   - Choice questions: [/Parallelogram/]
//   - Terminal: ([Stadium])
//   - Other questions: [Rectangle]
//
// Conditional transitions carry their condition as the edge label.
func GenerateMermaid(g *flow.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	nodes := g.Nodes()
	var sections []string
	bySection := make(map[string][]domain.QuestionNode)
	for _, n := range nodes {
		if _, seen := bySection[n.Section]; !seen {
			sections = append(sections, n.Section)
		}
		bySection[n.Section] = append(bySection[n.Section], n)
	}

	for _, section := range sections {
		indent := "    "
		if section != "" {
			fmt.Fprintf(&sb, "    subgraph %s [\"%s\"]\n", sanitizeMermaidID("section_"+section), section)
			indent = "        "
		}
		for _, n := range bySection[section] {
			opener, closer := shape(g, n)
			fmt.Fprintf(&sb, "%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(n.ID), opener, label(n), closer)
		}
		if section != "" {
			sb.WriteString("    end\n")
		}
	}

	for _, n := range nodes {
		from := sanitizeMermaidID(n.ID)
		for _, t := range n.Transitions {
			to := sanitizeMermaidID(t.ToNodeID)
			if t.Condition == "" {
				fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(t.Condition), to)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			if _, ok := g.Node(id); !ok || id == overlay.CurrentNode {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !visited[safeID] {
				visited[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func shape(g *flow.Graph, n domain.QuestionNode) (string, string) {
	switch {
	case n.ID == g.Start():
		return "((", "))"
	case n.IsTerminal():
		return "([", "])"
	case n.Kind == domain.KindSingleChoice || n.Kind == domain.KindMultiChoice:
		return "[/", "/]"
	}
	return "[", "]"
}

func label(n domain.QuestionNode) string {
	text := n.ID
	if n.SummaryLabel != "" {
		text = n.SummaryLabel
	}
	if n.Required {
		text += " *"
	}
	return escape(text)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
