package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
)

var leadingNumber = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// StateFromRaw decodes a loose answer map (node id to JSON value) into a
// conversation state, for hosts that collected the answers themselves.
// Keys that are not nodes of the graph are ignored. Choice values that
// match no option are kept as given; the lookup tables bucket them later.
func StateFromRaw(graph *flow.Graph, raw map[string]any) (*domain.ConversationState, error) {
	state := domain.NewConversationState("", graph.Start())
	for _, id := range graph.IDs() {
		v, ok := raw[id]
		if !ok || v == nil {
			continue
		}
		node, _ := graph.Node(id)
		a, err := decodeAnswer(node, v)
		if err != nil {
			return nil, err
		}
		if a.IsZero() {
			continue
		}
		state.Answers[id] = a
		state.Order = append(state.Order, id)
	}
	return state, nil
}

func decodeAnswer(node *domain.QuestionNode, v any) (domain.Answer, error) {
	if s, ok := v.(string); ok {
		switch s = strings.TrimSpace(s); s {
		case "":
			return domain.Answer{}, nil
		case domain.SentinelSkipped:
			return domain.SkippedAnswer(), nil
		case domain.SentinelNotSure:
			return domain.NotSureAnswer(), nil
		}
	}

	switch node.Kind {
	case domain.KindNumber:
		f, ok := 0.0, false
		switch n := v.(type) {
		case float64:
			f, ok = n, true
		case int:
			f, ok = float64(n), true
		case string:
			f, ok = parseLeadingNumber(n)
		}
		if !ok {
			return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "expected a number", Value: v}
		}
		if err := domain.CheckNumber(node.ID, f); err != nil {
			return domain.Answer{}, err
		}
		return domain.NumberAnswer(f), nil
	case domain.KindMultiChoice:
		var values []string
		switch list := v.(type) {
		case []any:
			for _, item := range list {
				values = append(values, fmt.Sprint(item))
			}
		case []string:
			values = list
		default:
			values = strings.Split(fmt.Sprint(v), ",")
		}
		out := make([]string, 0, len(values))
		for _, val := range values {
			if val = strings.TrimSpace(val); val != "" {
				out = append(out, choiceValue(node, val))
			}
		}
		if len(out) == 0 {
			return domain.Answer{}, nil
		}
		return domain.MultiAnswer(out...), nil
	case domain.KindSingleChoice:
		return domain.ChoiceAnswer(choiceValue(node, strings.TrimSpace(fmt.Sprint(v)))), nil
	case domain.KindFile:
		return domain.FileAnswer(strings.TrimSpace(fmt.Sprint(v))), nil
	}
	return domain.TextAnswer(strings.TrimSpace(fmt.Sprint(v))), nil
}

func choiceValue(node *domain.QuestionNode, v string) string {
	for _, c := range node.Choices {
		if strings.EqualFold(c.Value, v) || strings.EqualFold(c.Label, v) {
			return c.Value
		}
	}
	return v
}

// parseLeadingNumber reads the first number in s, so "1,000-5,000 units"
// yields 1000.
func parseLeadingNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	return f, err == nil
}
