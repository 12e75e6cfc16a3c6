package ir

import (
	"fmt"
	"math"

	"progcheck/internal/ast"
)

const (
	reasonDivByZero = "division by zero"
	reasonModByZero = "modulo by zero"
	reasonOverflow  = "integer overflow"
)

// Eval applies a binary operator to two integers. Division truncates toward
// zero and the remainder takes the sign of the dividend. Comparisons yield
// 1 or 0.
func Eval(op ast.Operator, l, r int64) (int64, error) {
	fail := func(reason string) (int64, error) {
		return 0, &EvaluationError{Op: op, Left: l, Right: r, Reason: reason}
	}

	switch op {
	case ast.OpAdd:
		if (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r) {
			return fail(reasonOverflow)
		}
		return l + r, nil
	case ast.OpSub:
		if (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r) {
			return fail(reasonOverflow)
		}
		return l - r, nil
	case ast.OpMul:
		if l == 0 || r == 0 {
			return 0, nil
		}
		if (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return fail(reasonOverflow)
		}
		p := l * r
		if p/r != l {
			return fail(reasonOverflow)
		}
		return p, nil
	case ast.OpDiv:
		if r == 0 {
			return fail(reasonDivByZero)
		}
		if l == math.MinInt64 && r == -1 {
			return fail(reasonOverflow)
		}
		return l / r, nil
	case ast.OpMod:
		if r == 0 {
			return fail(reasonModByZero)
		}
		return l % r, nil
	case ast.OpEq:
		return truth(l == r), nil
	case ast.OpNeq:
		return truth(l != r), nil
	case ast.OpLt:
		return truth(l < r), nil
	case ast.OpLe:
		return truth(l <= r), nil
	case ast.OpGt:
		return truth(l > r), nil
	case ast.OpGe:
		return truth(l >= r), nil
	}
	return 0, fmt.Errorf("unsupported binary operator %q", op)
}

// EvalUnary applies "!" to v: 1 when v is zero, 0 otherwise.
func EvalUnary(op ast.Operator, v int64) (int64, error) {
	if op != ast.OpNot {
		return 0, fmt.Errorf("unsupported unary operator %q", op)
	}
	return truth(v == 0), nil
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Env supplies values for names during evaluation. Array elements are looked
// up under keys of the form "a_0[3]".
type Env map[string]int64

// EvalExpr evaluates e under env. Names missing from env are an error.
func EvalExpr(e Expr, env Env) (int64, error) {
	switch x := e.(type) {
	case *Const:
		return x.Value, nil
	case *Ref:
		v, ok := env[x.Name.String()]
		if !ok {
			return 0, fmt.Errorf("no value for %s", x.Name)
		}
		return v, nil
	case *Index:
		idx, err := EvalExpr(x.Index, env)
		if err != nil {
			return 0, err
		}
		key := fmt.Sprintf("%s[%d]", x.Array, idx)
		v, ok := env[key]
		if !ok {
			return 0, fmt.Errorf("no value for %s", key)
		}
		return v, nil
	case *Binary:
		l, err := EvalExpr(x.Left, env)
		if err != nil {
			return 0, err
		}
		r, err := EvalExpr(x.Right, env)
		if err != nil {
			return 0, err
		}
		return Eval(x.Op, l, r)
	case *Unary:
		v, err := EvalExpr(x.Operand, env)
		if err != nil {
			return 0, err
		}
		return EvalUnary(x.Op, v)
	}
	return 0, unknownConstruct(e, 0)
}
