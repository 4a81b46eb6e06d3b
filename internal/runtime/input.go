package runtime

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

var (
	skipTokens    = []string{"skip", "skipped", "pass", "n/a"}
	notSureTokens = []string{"not sure", "not_sure", "notsure", "unsure", "idk", "i don't know", "don't know", "dont know"}
	leadingNumber = regexp.MustCompile(`^-?\d[\d,]*(\.\d+)?`)
)

// resolveEffectiveInput turns a raw submission into the answer stored for
// node, applying the pre-filled default, the sentinels and the node's
// input kind.
//
// raw may be nil, a string, a number, a list of strings (multi choice) or
// a domain.Answer.
func (e *Engine) resolveEffectiveInput(node *domain.QuestionNode, state *domain.ConversationState, raw any) (domain.Answer, error) {
	if a, ok := raw.(domain.Answer); ok {
		return e.checkAnswer(node, a)
	}

	values, err := e.rawValues(node, raw)
	if err != nil {
		return domain.Answer{}, err
	}

	if len(values) == 0 {
		if def, ok := state.Defaults[node.ID]; ok {
			return def, nil
		}
		if node.Required {
			return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "an answer is required"}
		}
		return domain.SkippedAnswer(), nil
	}

	if len(values) == 1 {
		v := values[0]
		if isToken(v, skipTokens) || v == domain.SentinelSkipped {
			return e.checkAnswer(node, domain.SkippedAnswer())
		}
		if node.AllowNotSure && (isToken(v, notSureTokens) || v == domain.SentinelNotSure) {
			return domain.NotSureAnswer(), nil
		}
	}

	switch node.Kind {
	case domain.KindText:
		return domain.TextAnswer(strings.Join(values, ", ")), nil
	case domain.KindFile:
		return domain.FileAnswer(values[0]), nil
	case domain.KindNumber:
		return parseNumber(node, values[0])
	case domain.KindSingleChoice:
		if len(values) > 1 {
			return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "pick a single option", Value: strings.Join(values, ", ")}
		}
		c, ok := matchChoice(node, values[0])
		if !ok {
			return domain.Answer{}, invalidChoice(node, values[0])
		}
		return domain.ChoiceAnswer(c.Value), nil
	case domain.KindMultiChoice:
		var picked []string
		for _, v := range values {
			c, ok := matchChoice(node, v)
			if !ok {
				return domain.Answer{}, invalidChoice(node, v)
			}
			if !contains(picked, c.Value) {
				picked = append(picked, c.Value)
			}
		}
		return domain.MultiAnswer(picked...), nil
	}
	return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: fmt.Sprintf("node of kind %q takes no answer", node.Kind)}
}

// rawValues flattens raw into sanitized, non-empty strings. Multi choice
// text is split on commas.
func (e *Engine) rawValues(node *domain.QuestionNode, raw any) ([]string, error) {
	var parts []string
	switch v := raw.(type) {
	case nil:
	case string:
		if node.Kind == domain.KindMultiChoice {
			parts = strings.Split(v, ",")
		} else {
			parts = []string{v}
		}
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
	case float64:
		parts = []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		parts = []string{strconv.Itoa(v)}
	case json.Number:
		parts = []string{v.String()}
	case bool:
		parts = []string{strconv.FormatBool(v)}
	default:
		return nil, &domain.ValidationError{NodeID: node.ID, Reason: "unsupported answer type", Value: fmt.Sprintf("%T", raw)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		clean, err := cleanAnswer(node.ID, p, e.maxInputSize)
		if err != nil {
			return nil, err
		}
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out, nil
}

// checkAnswer validates a pre-built answer against the node.
func (e *Engine) checkAnswer(node *domain.QuestionNode, a domain.Answer) (domain.Answer, error) {
	switch a.Type {
	case domain.AnswerSkipped:
		if node.Required {
			return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "this question cannot be skipped"}
		}
		return a, nil
	case domain.AnswerNotSure:
		if !node.AllowNotSure {
			return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "this question needs a concrete answer"}
		}
		return a, nil
	case domain.AnswerText, domain.AnswerFile:
		return e.resolveEffectiveInput(node, &domain.ConversationState{}, a.Text)
	case domain.AnswerChoice:
		return e.resolveEffectiveInput(node, &domain.ConversationState{}, a.Text)
	case domain.AnswerMulti:
		return e.resolveEffectiveInput(node, &domain.ConversationState{}, a.Values)
	case domain.AnswerNumber:
		return e.resolveEffectiveInput(node, &domain.ConversationState{}, a.Number)
	}
	return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "empty answer"}
}

func parseNumber(node *domain.QuestionNode, s string) (domain.Answer, error) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "expected a number", Value: s}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return domain.Answer{}, &domain.ValidationError{NodeID: node.ID, Reason: "expected a number", Value: s}
	}
	if err := domain.CheckNumber(node.ID, f); err != nil {
		return domain.Answer{}, err
	}
	return domain.NumberAnswer(f), nil
}

// matchChoice accepts a choice value or label (case-insensitive) or its
// 1-based position.
func matchChoice(node *domain.QuestionNode, v string) (domain.Choice, bool) {
	for _, c := range node.Choices {
		if strings.EqualFold(c.Value, v) || strings.EqualFold(c.Label, v) {
			return c, true
		}
	}
	if i, err := strconv.Atoi(v); err == nil && i >= 1 && i <= len(node.Choices) {
		return node.Choices[i-1], true
	}
	return domain.Choice{}, false
}

func invalidChoice(node *domain.QuestionNode, v string) error {
	opts := make([]string, 0, len(node.Choices))
	for _, c := range node.Choices {
		opts = append(opts, c.DisplayLabel())
	}
	return &domain.ValidationError{
		NodeID: node.ID,
		Reason: "choose one of: " + strings.Join(opts, " | "),
		Value:  v,
	}
}

func isToken(v string, tokens []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, t := range tokens {
		if v == t {
			return true
		}
	}
	return false
}
