package smt

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progcheck/internal/ast"
	"progcheck/internal/ir"
	"progcheck/internal/parser"
)

func ssa(t *testing.T, source string) []ir.Instruction {
	t.Helper()
	prog, err := parser.Parse(source)
	require.NoError(t, err)
	program, err := ir.Build(prog)
	require.NoError(t, err)
	return program.Instructions
}

func TestEncodeVerification(t *testing.T) {
	script, err := Encode(ssa(t, "x := 3; y := x + 1; assert(y > 0);"))
	require.NoError(t, err)

	assert.Equal(t, `(set-logic QF_NIA)
(declare-const x_1 Int)
(declare-const y_1 Int)
(assert (= x_1 3))
(assert (= y_1 (+ x_1 1)))
(assert (not (> y_1 0)))
(check-sat)
(get-model)
`, script.String())
}

func TestEncodeGuardedPhi(t *testing.T) {
	script, err := Encode(ssa(t, "if (x < 5) { y := x + 1; } else { y := x - 1; } assert(y != 0);"))
	require.NoError(t, err)

	assert.Equal(t, []string{"y_1", "x_0", "y_2", "y_3"}, script.Constants())
	assert.Equal(t, []string{
		"(= y_1 (+ x_0 1))",
		"(= y_2 (- x_0 1))",
		"(= y_3 (ite (< x_0 5) y_1 y_2))",
		"(not (distinct y_3 0))",
	}, script.Assertions)
}

func TestEncodeLoopPhis(t *testing.T) {
	script, err := Encode(ssa(t, "i := 0; while (i < 3) { i := i + 1; } assert(i == 3);"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"(= i_1 0)",
		"(or (= i_2 i_1) (= i_2 i_3))",
		"(= i_3 (+ i_2 1))",
		"(= i_4 (ite (not (< i_2 3)) i_1 i_3))",
		"(not (= i_4 3))",
	}, script.Assertions)
}

func TestEncodeSeveralAssertsAndNone(t *testing.T) {
	script, err := Encode(ssa(t, "assert(a > 0); assert(b > 0);"))
	require.NoError(t, err)
	assert.Equal(t, "(not (and (> a_0 0) (> b_0 0)))", script.Assertions[len(script.Assertions)-1])

	script, err = Encode(ssa(t, "x := 1;"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(= x_1 1)", "false"}, script.Assertions)
}

func TestEncodeArraysUseFunctions(t *testing.T) {
	script, err := Encode(ssa(t, "v := a[i + 1]; assert(v >= 0);"))
	require.NoError(t, err)

	assert.Equal(t, LogicUFNIA, script.Logic)
	assert.Contains(t, script.Declarations, Declaration{Name: "a_0_arr", Params: []Sort{IntSort}, Sort: IntSort})
	assert.NotContains(t, script.Constants(), "a_0")
	assert.Contains(t, script.Assertions, "(= v_1 (a_0_arr (+ i_0 1)))")
	assert.Contains(t, script.String(), "(declare-fun a_0_arr (Int) Int)\n")
}

func TestEncodeTermShapes(t *testing.T) {
	x := &ir.Ref{Name: ir.Name{Base: "x", Version: 1}}
	tests := []struct {
		name     string
		expr     ir.Expr
		expected string
	}{
		{"negative literal", &ir.Const{Value: -7}, "(- 7)"},
		{"min int", &ir.Const{Value: math.MinInt64}, "(- 9223372036854775808)"},
		{"truncating division", &ir.Binary{Op: ast.OpDiv, Left: x, Right: &ir.Const{Value: 2}},
			"(ite (= (>= x_1 0) (>= 2 0)) (div (abs x_1) (abs 2)) (- (div (abs x_1) (abs 2))))"},
		{"c remainder", &ir.Binary{Op: ast.OpMod, Left: x, Right: &ir.Const{Value: 3}},
			"(ite (>= x_1 0) (mod (abs x_1) (abs 3)) (- (mod (abs x_1) (abs 3))))"},
		{"comparison as int", &ir.Binary{Op: ast.OpAdd, Left: &ir.Binary{Op: ast.OpLt, Left: x, Right: &ir.Const{Value: 0}}, Right: &ir.Const{Value: 1}},
			"(+ (ite (< x_1 0) 1 0) 1)"},
		{"not as int", &ir.Unary{Op: ast.OpNot, Operand: x}, "(ite (not (distinct x_1 0)) 1 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, intTerm(tt.expr))
		})
	}

	assert.Equal(t, "(distinct x_1 0)", boolTerm(x))
	assert.Equal(t, "(not (< x_1 0))", boolTerm(&ir.Unary{Op: ast.OpNot, Operand: &ir.Binary{Op: ast.OpLt, Left: x, Right: &ir.Const{Value: 0}}}))
}

func TestEncodeRejectsWidePhi(t *testing.T) {
	instrs := []ir.Instruction{
		&ir.Phi{Result: ir.Name{Base: "x", Version: 3}, Operands: []ir.Name{{Base: "x", Version: 0}, {Base: "x", Version: 1}, {Base: "x", Version: 2}}},
	}
	_, err := Encode(instrs)
	assert.True(t, errors.Is(err, ErrUnsupportedPhi))
	assert.Contains(t, err.Error(), "x_3")
}

func TestEncodeEquivalence(t *testing.T) {
	first := ssa(t, "x := 3; y := x + 1; assert(y>0);")
	second := ssa(t, "x := 3; if (x<5) { y:=x+1; } else { y:=x-1; } assert(y>0);")

	script, err := EncodeEquivalence(first, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"x_1", "y_1", "x.b_1", "y.b_1", "y.b_2", "y.b_3"}, script.Constants())
	assert.Equal(t, []string{
		"(= x_1 3)",
		"(= y_1 (+ x_1 1))",
		"(= x.b_1 3)",
		"(= y.b_1 (+ x.b_1 1))",
		"(= y.b_2 (- x.b_1 1))",
		"(= y.b_3 (ite (< x.b_1 5) y.b_1 y.b_2))",
		"(not (and (= x_1 x.b_1) (= y_1 y.b_3)))",
	}, script.Assertions)
}

func TestEncodeEquivalenceSharesInputs(t *testing.T) {
	script, err := EncodeEquivalence(ssa(t, "y := n + n;"), ssa(t, "y := n * 2;"))
	require.NoError(t, err)

	assert.Equal(t, []string{"y_1", "n_0", "y.b_1"}, script.Constants())
	assert.Equal(t, "(not (= y_1 y.b_1))", script.Assertions[2])
}

func TestEncodeEquivalenceStructuralMismatch(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
	}{
		{"different counts", "x := 1; y := 2;", "x := 1;"},
		{"same count different names", "x := 1;", "z := 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := EncodeEquivalence(ssa(t, tt.first), ssa(t, tt.second))
			assert.Nil(t, script)

			var mismatch *StructuralMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.NotEqual(t, mismatch.Left, mismatch.Right)
		})
	}
}

func TestOutputs(t *testing.T) {
	outputs := Outputs(ssa(t, "i := 0; while (i < n) { i := i + 1; } if (c > 0) { r := i; }"))

	assert.Equal(t, map[string]ir.Name{
		"i": {Base: "i", Version: 4},
		"r": {Base: "r", Version: 2},
	}, outputs)
}
