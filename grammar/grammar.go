package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Document is a sequence of S-expressions, such as an SMT-LIB2 script or
// the output of a solver.
type Document struct {
	Exprs []*SExpr `parser:"@@*"`
}

type SExpr struct {
	Pos    lexer.Position
	List   *List   `parser:"  @@"`
	Number *string `parser:"| @Integer"`
	Symbol *string `parser:"| @Symbol"`
	Str    *string `parser:"| @String"`
}

type List struct {
	Items []*SExpr `parser:"\"(\" @@* \")\""`
}
