package solver

import (
	"errors"
	"fmt"

	"progcheck/grammar"
	"progcheck/internal/ast"
	"progcheck/internal/ir"
)

// value is the result of evaluating an Int or Bool term.
type value struct {
	num     int64
	truth   bool
	boolean bool
}

func intValue(n int64) value { return value{num: n} }
func boolValue(b bool) value { return value{truth: b, boolean: true} }

// errUndefined is returned when a term has no defined value under the
// assignment, e.g. division by zero, whose value SMT-LIB leaves unspecified,
// or arithmetic that leaves int64.
var errUndefined = errors.New("term value is not determined")

// evaluator computes term values under an assignment of the constants.
type evaluator struct {
	env map[string]int64
}

func (ev *evaluator) eval(t *grammar.SExpr) (value, error) {
	if n, ok := t.Int(); ok {
		return intValue(n), nil
	}
	if t.Number != nil {
		return value{}, errUndefined
	}
	if name := t.SymbolName(); name != "" {
		switch name {
		case "true":
			return boolValue(true), nil
		case "false":
			return boolValue(false), nil
		}
		n, ok := ev.env[unquote(name)]
		if !ok {
			return value{}, fmt.Errorf("unknown constant %s", name)
		}
		return intValue(n), nil
	}

	items := t.Items()
	if len(items) == 0 {
		return value{}, fmt.Errorf("cannot evaluate %s", t)
	}
	op, args := items[0].SymbolName(), items[1:]

	switch op {
	case "not":
		if len(args) != 1 {
			return value{}, arityError(t)
		}
		b, err := ev.evalBool(args[0])
		return boolValue(!b), err
	case "and", "or":
		for _, arg := range args {
			b, err := ev.evalBool(arg)
			if err != nil {
				return value{}, err
			}
			if op == "and" && !b {
				return boolValue(false), nil
			}
			if op == "or" && b {
				return boolValue(true), nil
			}
		}
		return boolValue(op == "and"), nil
	case "=>":
		if len(args) != 2 {
			return value{}, arityError(t)
		}
		a, err := ev.evalBool(args[0])
		if err != nil || !a {
			return boolValue(true), err
		}
		b, err := ev.evalBool(args[1])
		return boolValue(b), err
	case "ite":
		if len(args) != 3 {
			return value{}, arityError(t)
		}
		c, err := ev.evalBool(args[0])
		if err != nil {
			return value{}, err
		}
		if c {
			return ev.eval(args[1])
		}
		return ev.eval(args[2])
	case "=", "distinct":
		if len(args) != 2 {
			return value{}, arityError(t)
		}
		a, err := ev.eval(args[0])
		if err != nil {
			return value{}, err
		}
		b, err := ev.eval(args[1])
		if err != nil {
			return value{}, err
		}
		equal := a == b
		return boolValue(equal == (op == "=")), nil
	}

	nums := make([]int64, len(args))
	for i, arg := range args {
		n, err := ev.evalInt(arg)
		if err != nil {
			return value{}, err
		}
		nums[i] = n
	}

	switch op {
	case "<", "<=", ">", ">=":
		if len(nums) != 2 {
			return value{}, arityError(t)
		}
		r, err := ir.Eval(ast.Operator(op), nums[0], nums[1])
		return boolValue(r == 1), err
	case "+", "*":
		if len(nums) == 0 {
			return value{}, arityError(t)
		}
		acc := nums[0]
		for _, n := range nums[1:] {
			var err error
			if acc, err = ir.Eval(ast.Operator(op), acc, n); err != nil {
				return value{}, errUndefined
			}
		}
		return intValue(acc), nil
	case "-":
		if len(nums) == 1 {
			nums = []int64{0, nums[0]}
		}
		acc := nums[0]
		for _, n := range nums[1:] {
			var err error
			if acc, err = ir.Eval(ast.OpSub, acc, n); err != nil {
				return value{}, errUndefined
			}
		}
		return intValue(acc), nil
	case "abs":
		if len(nums) != 1 {
			return value{}, arityError(t)
		}
		if nums[0] >= 0 {
			return intValue(nums[0]), nil
		}
		n, err := ir.Eval(ast.OpSub, 0, nums[0])
		if err != nil {
			return value{}, errUndefined
		}
		return intValue(n), nil
	case "div", "mod":
		if len(nums) != 2 {
			return value{}, arityError(t)
		}
		q, r, err := euclidean(nums[0], nums[1])
		if err != nil {
			return value{}, err
		}
		if op == "div" {
			return intValue(q), nil
		}
		return intValue(r), nil
	}
	return value{}, fmt.Errorf("unsupported operator %q", op)
}

func (ev *evaluator) evalInt(t *grammar.SExpr) (int64, error) {
	v, err := ev.eval(t)
	if err != nil {
		return 0, err
	}
	if v.boolean {
		return 0, fmt.Errorf("expected Int term, got Bool: %s", t)
	}
	return v.num, nil
}

func (ev *evaluator) evalBool(t *grammar.SExpr) (bool, error) {
	v, err := ev.eval(t)
	if err != nil {
		return false, err
	}
	if !v.boolean {
		return false, fmt.Errorf("expected Bool term, got Int: %s", t)
	}
	return v.truth, nil
}

// euclidean implements SMT-LIB integer div and mod: a = b*q + r with
// 0 <= r < |b|.
func euclidean(a, b int64) (q, r int64, err error) {
	if b == 0 {
		return 0, 0, errUndefined
	}
	q, err = ir.Eval(ast.OpDiv, a, b)
	if err != nil {
		return 0, 0, errUndefined
	}
	r = a % b
	if r < 0 {
		if b > 0 {
			q--
			r += b
		} else {
			q++
			r -= b
		}
	}
	return q, r, nil
}

func arityError(t *grammar.SExpr) error {
	return fmt.Errorf("wrong number of arguments in %s", t)
}

func unquote(symbol string) string {
	if len(symbol) >= 2 && symbol[0] == '|' && symbol[len(symbol)-1] == '|' {
		return symbol[1 : len(symbol)-1]
	}
	return symbol
}
