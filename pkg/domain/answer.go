package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnswerType discriminates the Answer variant.
type AnswerType string

const (
	AnswerText    AnswerType = "text"
	AnswerChoice  AnswerType = "choice"
	AnswerMulti   AnswerType = "multi"
	AnswerNumber  AnswerType = "number"
	AnswerFile    AnswerType = "file"
	AnswerSkipped AnswerType = "skipped"
	AnswerNotSure AnswerType = "not_sure"
)

// Answer is the value captured at a node. Exactly one payload field is
// meaningful, selected by Type.
type Answer struct {
	Type   AnswerType `json:"type"`
	Text   string     `json:"text,omitempty"`
	Values []string   `json:"values,omitempty"`
	Number float64    `json:"number,omitempty"`
}

func TextAnswer(s string) Answer    { return Answer{Type: AnswerText, Text: s} }
func ChoiceAnswer(v string) Answer  { return Answer{Type: AnswerChoice, Text: v} }
func FileAnswer(ref string) Answer  { return Answer{Type: AnswerFile, Text: ref} }
func NumberAnswer(n float64) Answer { return Answer{Type: AnswerNumber, Number: n} }
func SkippedAnswer() Answer         { return Answer{Type: AnswerSkipped} }
func NotSureAnswer() Answer         { return Answer{Type: AnswerNotSure} }
func MultiAnswer(vs ...string) Answer {
	return Answer{Type: AnswerMulti, Values: append([]string(nil), vs...)}
}

// IsSentinel reports whether the answer is SKIPPED or NOT_SURE.
func (a Answer) IsSentinel() bool {
	return a.Type == AnswerSkipped || a.Type == AnswerNotSure
}

// IsZero reports whether no answer was captured.
func (a Answer) IsZero() bool {
	return a.Type == ""
}

// String returns the canonical value: the text or choice value, the
// comma-joined values, the formatted number, or the sentinel token.
func (a Answer) String() string {
	switch a.Type {
	case AnswerText, AnswerChoice, AnswerFile:
		return a.Text
	case AnswerMulti:
		return strings.Join(a.Values, ", ")
	case AnswerNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case AnswerSkipped:
		return SentinelSkipped
	case AnswerNotSure:
		return SentinelNotSure
	}
	return ""
}

// Value returns the answer as a plain Go value for condition evaluation.
func (a Answer) Value() any {
	switch a.Type {
	case AnswerNumber:
		return a.Number
	case AnswerMulti:
		return append([]string(nil), a.Values...)
	case "":
		return nil
	}
	return a.String()
}

// Equal compares two answers by variant and payload.
func (a Answer) Equal(b Answer) bool {
	if a.Type != b.Type || a.Text != b.Text || a.Number != b.Number || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	return true
}

// MaxNumber bounds number answers so they convert to int on every platform.
const MaxNumber = math.MaxInt32

// CheckNumber rejects number answers that are not finite, negative or
// above MaxNumber.
func CheckNumber(nodeID string, f float64) error {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return &ValidationError{NodeID: nodeID, Reason: "expected a finite number", Value: f}
	case f < 0:
		return &ValidationError{NodeID: nodeID, Reason: "must not be negative", Value: f}
	case f > MaxNumber:
		return &ValidationError{NodeID: nodeID, Reason: fmt.Sprintf("must not exceed %d", MaxNumber), Value: f}
	}
	return nil
}
