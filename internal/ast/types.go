package ast

type NodeType int

const (
	ILLEGAL NodeType = iota

	PROGRAM

	// Statements
	ASSIGNMENT
	IF_STMT
	WHILE_STMT
	FOR_STMT
	ASSERT_STMT

	// Expressions
	LITERAL_EXPR
	VARIABLE_EXPR
	ARRAY_ACCESS_EXPR
	BINARY_EXPR
	UNARY_EXPR
)

func (t NodeType) String() string {
	switch t {
	case PROGRAM:
		return "Program"
	case ASSIGNMENT:
		return "Assignment"
	case IF_STMT:
		return "If"
	case WHILE_STMT:
		return "While"
	case FOR_STMT:
		return "For"
	case ASSERT_STMT:
		return "Assert"
	case LITERAL_EXPR:
		return "Literal"
	case VARIABLE_EXPR:
		return "Variable"
	case ARRAY_ACCESS_EXPR:
		return "ArrayAccess"
	case BINARY_EXPR:
		return "BinaryOp"
	case UNARY_EXPR:
		return "UnaryOp"
	default:
		return "Illegal"
	}
}

// Position locates a statement in the program text.
type Position struct {
	Line int // 1-based
}

// Program is the root of a parsed source file.
type Program struct {
	Body []Stmt
}

type Assignment struct {
	Pos    Position
	Target string
	Value  Expr
}

// If holds an optional else branch; Else is empty when the source has none.
type If struct {
	Pos  Position
	Cond Expr
	Then []Stmt
	Else []Stmt
}

type While struct {
	Pos  Position
	Cond Expr
	Body []Stmt
}

type For struct {
	Pos    Position
	Init   *Assignment
	Cond   Expr
	Update *Assignment
	Body   []Stmt
}

type Assert struct {
	Pos  Position
	Cond Expr
}
