package ast

type Node interface {
	NodeType() NodeType
	String() string
}

// Stmt is implemented by the five statement kinds only.
type Stmt interface {
	Node
	NodePos() Position
	isStmt()
}

func (*Assignment) isStmt() {}

func (*If) isStmt() {}

func (*While) isStmt() {}

func (*For) isStmt() {}

func (*Assert) isStmt() {}

func (*Program) NodeType() NodeType { return PROGRAM }

func (a *Assignment) NodePos() Position { return a.Pos }
func (*Assignment) NodeType() NodeType  { return ASSIGNMENT }

func (i *If) NodePos() Position { return i.Pos }
func (*If) NodeType() NodeType  { return IF_STMT }

func (w *While) NodePos() Position { return w.Pos }
func (*While) NodeType() NodeType  { return WHILE_STMT }

func (f *For) NodePos() Position { return f.Pos }
func (*For) NodeType() NodeType  { return FOR_STMT }

func (a *Assert) NodePos() Position { return a.Pos }
func (*Assert) NodeType() NodeType  { return ASSERT_STMT }

func (*Literal) NodeType() NodeType     { return LITERAL_EXPR }
func (*Variable) NodeType() NodeType    { return VARIABLE_EXPR }
func (*ArrayAccess) NodeType() NodeType { return ARRAY_ACCESS_EXPR }
func (*BinaryOp) NodeType() NodeType    { return BINARY_EXPR }
func (*UnaryOp) NodeType() NodeType     { return UNARY_EXPR }
