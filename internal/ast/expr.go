package ast

type Expr interface {
	Node
	isExpr()
}

func (*Literal) isExpr() {}

func (*Variable) isExpr() {}

func (*ArrayAccess) isExpr() {}

func (*BinaryOp) isExpr() {}

func (*UnaryOp) isExpr() {}

// Operator is one of the fixed binary operators or the unary "!".
type Operator string

const (
	OpEq  Operator = "=="
	OpNeq Operator = "!="
	OpLe  Operator = "<="
	OpGe  Operator = ">="
	OpLt  Operator = "<"
	OpGt  Operator = ">"
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
	OpNot Operator = "!"
)

// BinaryOperators is the operator scan order used by the expression parser.
// An expression splits on the first operator of this list that occurs in it.
var BinaryOperators = []Operator{
	OpEq, OpNeq, OpLe, OpGe, OpLt, OpGt,
	OpAdd, OpSub, OpMul, OpDiv, OpMod,
}

// Priority returns the index of op in BinaryOperators, or -1.
func (op Operator) Priority() int {
	for i, candidate := range BinaryOperators {
		if candidate == op {
			return i
		}
	}
	return -1
}

// IsComparison reports whether op yields a truth value.
func (op Operator) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLe, OpGe, OpLt, OpGt:
		return true
	}
	return false
}

type Literal struct {
	Value int64
}

type Variable struct {
	Name string
}

type ArrayAccess struct {
	Array string
	Index Expr
}

type BinaryOp struct {
	Op    Operator
	Left  Expr
	Right Expr
}

type UnaryOp struct {
	Op      Operator
	Operand Expr
}
