// Package condition implements the expression language of transition and
// prompt-variant conditions.
//
// Grammar:
//
//	expr    = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | "(" expr ")" | compare
//	compare = operand [ ("==" | "!=" | ">=" | "<=" | ">" | "<") operand ]
//	operand = "input" | "answers." id | string | number | "true" | "false" | SKIPPED | NOT_SURE
//
// "input" is the answer being submitted; "answers.<id>" reads the
// accumulated answer map. Against a multi-choice answer, == and != test
// membership. A bare operand is true when it holds a non-empty,
// non-sentinel value.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Env is the evaluation environment.
type Env struct {
	Input   domain.Answer
	Answers map[string]domain.Answer
}

// Expr is a parsed condition.
type Expr interface {
	Eval(env Env) (bool, error)
}

// Eval parses and evaluates expression against env.
func Eval(expression string, env Env) (bool, error) {
	e, err := Parse(expression)
	if err != nil {
		return false, err
	}
	return e.Eval(env)
}

// Refs lists the answer ids referenced by expression, excluding "input".
func Refs(expression string) ([]string, error) {
	toks, err := lex(expression)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, t := range toks {
		if t.kind == tokIdent && strings.HasPrefix(t.text, answersPrefix) {
			refs = append(refs, strings.TrimPrefix(t.text, answersPrefix))
		}
	}
	return refs, nil
}

const answersPrefix = "answers."

type orExpr struct{ left, right Expr }

func (e orExpr) Eval(env Env) (bool, error) {
	l, err := e.left.Eval(env)
	if err != nil || l {
		return l, err
	}
	return e.right.Eval(env)
}

type andExpr struct{ left, right Expr }

func (e andExpr) Eval(env Env) (bool, error) {
	l, err := e.left.Eval(env)
	if err != nil || !l {
		return false, err
	}
	return e.right.Eval(env)
}

type notExpr struct{ inner Expr }

func (e notExpr) Eval(env Env) (bool, error) {
	v, err := e.inner.Eval(env)
	return !v, err
}

type truthyExpr struct{ operand operand }

func (e truthyExpr) Eval(env Env) (bool, error) {
	switch v := e.operand.resolve(env).(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case []string:
		return len(v) > 0, nil
	case string:
		return v != "" && v != domain.SentinelSkipped && v != domain.SentinelNotSure, nil
	}
	return false, nil
}

type compareExpr struct {
	op          string
	left, right operand
}

func (e compareExpr) Eval(env Env) (bool, error) {
	l := e.left.resolve(env)
	r := e.right.resolve(env)

	switch e.op {
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	}

	lf, lok := number(l)
	rf, rok := number(r)
	if !lok || !rok {
		return false, fmt.Errorf("operator %s needs numeric operands, got %v and %v", e.op, l, r)
	}
	switch e.op {
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	}
	return false, fmt.Errorf("unknown operator %q", e.op)
}

func equal(l, r any) bool {
	if list, ok := l.([]string); ok {
		return contains(list, r)
	}
	if list, ok := r.([]string); ok {
		return contains(list, l)
	}
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if lf, ok := number(l); ok {
		if rf, ok := number(r); ok {
			return lf == rf
		}
	}
	return fmt.Sprint(l) == fmt.Sprint(r)
}

func contains(list []string, v any) bool {
	s := fmt.Sprint(v)
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

type operand struct {
	ref     string // "input" or an answer id; empty for literals
	isInput bool
	literal any
}

func (o operand) resolve(env Env) any {
	if o.isInput {
		return env.Input.Value()
	}
	if o.ref != "" {
		a, ok := env.Answers[o.ref]
		if !ok {
			return nil
		}
		return a.Value()
	}
	return o.literal
}
