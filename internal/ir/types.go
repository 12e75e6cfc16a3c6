package ir

import (
	"fmt"
	"strconv"
	"strings"

	"progcheck/internal/ast"
)

// SSA form for the analyzed language. Every Name is written by at most one
// instruction; version 0 of a name that is never written is a free input.

// Name is a versioned variable, rendered as base_version.
type Name struct {
	Base    string
	Version int
}

func (n Name) String() string {
	return n.Base + "_" + strconv.Itoa(n.Version)
}

// IsInput reports whether n is the initial, externally supplied version.
func (n Name) IsInput() bool {
	return n.Version == 0
}

// Program is the result of SSA construction.
type Program struct {
	Instructions []Instruction
	// FinalVersions maps every base name seen to its live version at exit.
	FinalVersions map[string]int
}

// Final returns the live SSA name of base at program exit.
func (p *Program) Final(base string) Name {
	return Name{Base: base, Version: p.FinalVersions[base]}
}

// Expr is a side-effect free SSA expression.
type Expr interface {
	isExpr()
	String() string
}

type Const struct {
	Value int64
}

type Ref struct {
	Name Name
}

// Index reads element Index of the read-only array Array.
type Index struct {
	Array Name
	Index Expr
}

type Binary struct {
	Op    ast.Operator
	Left  Expr
	Right Expr
}

type Unary struct {
	Op      ast.Operator
	Operand Expr
}

func (*Const) isExpr()  {}
func (*Ref) isExpr()    {}
func (*Index) isExpr()  {}
func (*Binary) isExpr() {}
func (*Unary) isExpr()  {}

func (c *Const) String() string { return strconv.FormatInt(c.Value, 10) }
func (r *Ref) String() string   { return r.Name.String() }
func (i *Index) String() string { return fmt.Sprintf("%s[%s]", i.Array, i.Index) }

func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", operand(b.Left), b.Op, operand(b.Right))
}

func (u *Unary) String() string {
	return fmt.Sprintf("%s%s", u.Op, operand(u.Operand))
}

func operand(e Expr) string {
	if _, ok := e.(*Binary); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// Instruction is one of Assign, Assert or Phi.
type Instruction interface {
	isInstruction()
	String() string
}

type Assign struct {
	Target Name
	Value  Expr
	Line   int
}

// Assert keeps the source line of the assertion it came from.
type Assert struct {
	Cond Expr
	Line int
}

// Phi merges versions of one base name at a join point. Guard selects
// Operands[0] when true and Operands[1] otherwise; loop-entry phis have no
// guard.
type Phi struct {
	Result   Name
	Operands []Name
	Guard    Expr
}

func (*Assign) isInstruction() {}
func (*Assert) isInstruction() {}
func (*Phi) isInstruction()    {}

func (a *Assign) String() string {
	return fmt.Sprintf("%s := %s", a.Target, a.Value)
}

func (a *Assert) String() string {
	return fmt.Sprintf("assert %s", a.Cond)
}

func (p *Phi) String() string {
	ops := make([]string, len(p.Operands))
	for i, op := range p.Operands {
		ops[i] = op.String()
	}
	s := fmt.Sprintf("%s := phi(%s)", p.Result, strings.Join(ops, ", "))
	if p.Guard != nil {
		s += " if " + p.Guard.String()
	}
	return s
}
