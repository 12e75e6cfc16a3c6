package smt

import "progcheck/internal/ir"

// Renamer rewrites every name-bearing field of an instruction stream by
// appending Suffix to the base name. With KeepInputs, version-0 names are
// left alone.
type Renamer struct {
	Suffix     string
	KeepInputs bool
}

// Rename renames every name in instrs, inputs included.
func Rename(instrs []ir.Instruction, suffix string) []ir.Instruction {
	return Renamer{Suffix: suffix}.Instructions(instrs)
}

func (r Renamer) Name(n ir.Name) ir.Name {
	if r.KeepInputs && n.IsInput() {
		return n
	}
	return ir.Name{Base: n.Base + r.Suffix, Version: n.Version}
}

func (r Renamer) Instructions(instrs []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(instrs))
	for i, inst := range instrs {
		out[i] = r.Instruction(inst)
	}
	return out
}

func (r Renamer) Instruction(inst ir.Instruction) ir.Instruction {
	switch i := inst.(type) {
	case *ir.Assign:
		return &ir.Assign{Target: r.Name(i.Target), Value: r.Expr(i.Value), Line: i.Line}
	case *ir.Assert:
		return &ir.Assert{Cond: r.Expr(i.Cond), Line: i.Line}
	case *ir.Phi:
		ops := make([]ir.Name, len(i.Operands))
		for k, op := range i.Operands {
			ops[k] = r.Name(op)
		}
		phi := &ir.Phi{Result: r.Name(i.Result), Operands: ops}
		if i.Guard != nil {
			phi.Guard = r.Expr(i.Guard)
		}
		return phi
	}
	return inst
}

func (r Renamer) Expr(e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Const:
		return &ir.Const{Value: x.Value}
	case *ir.Ref:
		return &ir.Ref{Name: r.Name(x.Name)}
	case *ir.Index:
		return &ir.Index{Array: r.Name(x.Array), Index: r.Expr(x.Index)}
	case *ir.Binary:
		return &ir.Binary{Op: x.Op, Left: r.Expr(x.Left), Right: r.Expr(x.Right)}
	case *ir.Unary:
		return &ir.Unary{Op: x.Op, Operand: r.Expr(x.Operand)}
	}
	return e
}
