package smt

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"progcheck/internal/ast"
	"progcheck/internal/ir"
)

// ArraySuffix is appended to an array's SSA name to form the name of the
// uninterpreted function standing for its contents.
const ArraySuffix = "_arr"

// encoder lowers one instruction stream into a script.
type encoder struct {
	script *Script
}

// Encode builds the verification script for instrs. The script is
// satisfiable exactly when some input violates an assertion: definitional
// equalities are asserted as they are and the conjunction of all assert
// conditions is negated.
func Encode(instrs []ir.Instruction) (*Script, error) {
	e := &encoder{script: &Script{}}
	conds, err := e.encode(instrs)
	if err != nil {
		return nil, err
	}
	e.finish(instrs)
	e.script.assert(negate(conds))
	return e.script, nil
}

// EncodeEquivalence builds a script that is satisfiable exactly when the two
// programs can end with different values in some output variable. The second
// stream is renamed apart except for its free inputs, which both programs
// share. Assertions play no part.
func EncodeEquivalence(first, second []ir.Instruction) (*Script, error) {
	left, right := Outputs(first), Outputs(second)
	leftNames := slices.Sorted(maps.Keys(left))
	rightNames := slices.Sorted(maps.Keys(right))
	if !slices.Equal(leftNames, rightNames) {
		return nil, &StructuralMismatchError{Left: leftNames, Right: rightNames}
	}

	renamer := Renamer{Suffix: SecondSuffix, KeepInputs: true}
	renamed := renamer.Instructions(second)

	e := &encoder{script: &Script{}}
	if _, err := e.encode(first); err != nil {
		return nil, err
	}
	if _, err := e.encode(renamed); err != nil {
		return nil, err
	}
	e.finish(append(slices.Clone(first), renamed...))

	pairs := make([]string, len(leftNames))
	for i, base := range leftNames {
		pairs[i] = fmt.Sprintf("(= %s %s)", left[base], renamer.Name(right[base]))
	}
	e.script.assert(negate(pairs))
	return e.script, nil
}

// SecondSuffix marks the names of the second program in an equivalence
// script. Source identifiers cannot contain a dot, so it never collides.
const SecondSuffix = ".b"

// Outputs maps every name that receives at least one assignment to its
// last written version, counting phi results as writes.
func Outputs(instrs []ir.Instruction) map[string]ir.Name {
	assigned := make(map[string]bool)
	last := make(map[string]ir.Name)
	for _, inst := range instrs {
		name, ok := ir.Writes(inst)
		if !ok {
			continue
		}
		if _, isAssign := inst.(*ir.Assign); isAssign {
			assigned[name.Base] = true
		}
		if name.Version > last[name.Base].Version {
			last[name.Base] = name
		}
	}
	outputs := make(map[string]ir.Name, len(assigned))
	for base := range assigned {
		outputs[base] = last[base]
	}
	return outputs
}

// encode declares and asserts the definitions of instrs and returns the
// assert conditions as boolean terms.
func (e *encoder) encode(instrs []ir.Instruction) ([]string, error) {
	var conds []string
	for _, inst := range instrs {
		switch i := inst.(type) {
		case *ir.Assign:
			e.script.assert(fmt.Sprintf("(= %s %s)", i.Target, intTerm(i.Value)))
		case *ir.Phi:
			if len(i.Operands) != 2 {
				return nil, fmt.Errorf("%s: %w (got %d)", i.Result, ErrUnsupportedPhi, len(i.Operands))
			}
			a, b := i.Operands[0], i.Operands[1]
			if i.Guard != nil {
				e.script.assert(fmt.Sprintf("(= %s (ite %s %s %s))", i.Result, boolTerm(i.Guard), a, b))
			} else {
				e.script.assert(fmt.Sprintf("(or (= %s %s) (= %s %s))", i.Result, a, i.Result, b))
			}
		case *ir.Assert:
			conds = append(conds, boolTerm(i.Cond))
		default:
			return nil, &ir.UnknownConstructError{Construct: fmt.Sprintf("%T", inst)}
		}
	}
	return conds, nil
}

// finish declares every scalar name and array function in first-use order
// and picks the logic.
func (e *encoder) finish(instrs []ir.Instruction) {
	arrays := ir.Arrays(instrs)
	isArray := make(map[ir.Name]bool, len(arrays))
	for _, a := range arrays {
		isArray[a] = true
	}

	declare := func(n ir.Name) {
		e.script.declare(Declaration{Name: n.String(), Sort: IntSort})
	}
	for _, inst := range instrs {
		if name, ok := ir.Writes(inst); ok {
			declare(name)
		}
		for _, name := range scalarReads(inst) {
			declare(name)
		}
	}

	e.script.Logic = LogicNIA
	for _, a := range arrays {
		e.script.declare(Declaration{Name: a.String() + ArraySuffix, Params: []Sort{IntSort}, Sort: IntSort})
		e.script.Logic = LogicUFNIA
	}
}

// scalarReads is ir.Reads without the array names of Index expressions.
func scalarReads(inst ir.Instruction) []ir.Name {
	var names []ir.Name
	var visit func(ir.Expr)
	visit = func(x ir.Expr) {
		switch v := x.(type) {
		case *ir.Ref:
			names = append(names, v.Name)
		case *ir.Index:
			visit(v.Index)
		case *ir.Binary:
			visit(v.Left)
			visit(v.Right)
		case *ir.Unary:
			visit(v.Operand)
		}
	}
	switch i := inst.(type) {
	case *ir.Assign:
		visit(i.Value)
	case *ir.Assert:
		visit(i.Cond)
	case *ir.Phi:
		names = append(names, i.Operands...)
		if i.Guard != nil {
			visit(i.Guard)
		}
	}
	return names
}

func negate(conds []string) string {
	switch len(conds) {
	case 0:
		return "false"
	case 1:
		return fmt.Sprintf("(not %s)", conds[0])
	}
	return fmt.Sprintf("(not (and %s))", strings.Join(conds, " "))
}

var comparisons = map[ast.Operator]string{
	ast.OpEq:  "=",
	ast.OpNeq: "distinct",
	ast.OpLt:  "<",
	ast.OpLe:  "<=",
	ast.OpGt:  ">",
	ast.OpGe:  ">=",
}

// intTerm renders x as an Int-sorted term. Truth values become 1 or 0.
func intTerm(x ir.Expr) string {
	switch v := x.(type) {
	case *ir.Const:
		return intLiteral(v.Value)
	case *ir.Ref:
		return v.Name.String()
	case *ir.Index:
		return fmt.Sprintf("(%s%s %s)", v.Array, ArraySuffix, intTerm(v.Index))
	case *ir.Binary:
		l, r := intTerm(v.Left), intTerm(v.Right)
		switch v.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul:
			return fmt.Sprintf("(%s %s %s)", v.Op, l, r)
		case ast.OpDiv:
			// truncate toward zero
			q := fmt.Sprintf("(div (abs %s) (abs %s))", l, r)
			return fmt.Sprintf("(ite (= (>= %s 0) (>= %s 0)) %s (- %s))", l, r, q, q)
		case ast.OpMod:
			// the remainder takes the sign of the dividend
			m := fmt.Sprintf("(mod (abs %s) (abs %s))", l, r)
			return fmt.Sprintf("(ite (>= %s 0) %s (- %s))", l, m, m)
		}
	}
	return fmt.Sprintf("(ite %s 1 0)", boolTerm(x))
}

// boolTerm renders x as a Bool-sorted term. Integers are true when non-zero.
func boolTerm(x ir.Expr) string {
	switch v := x.(type) {
	case *ir.Binary:
		if op, ok := comparisons[v.Op]; ok {
			return fmt.Sprintf("(%s %s %s)", op, intTerm(v.Left), intTerm(v.Right))
		}
	case *ir.Unary:
		return fmt.Sprintf("(not %s)", boolTerm(v.Operand))
	}
	return fmt.Sprintf("(distinct %s 0)", intTerm(x))
}

func intLiteral(v int64) string {
	if v < 0 {
		// -v overflows for MinInt64, so format the magnitude as unsigned
		return fmt.Sprintf("(- %s)", strconv.FormatUint(uint64(-(v+1))+1, 10))
	}
	return strconv.FormatInt(v, 10)
}
