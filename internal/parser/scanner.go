package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"progcheck/token"
)

// expressionLexer tokenizes the text of a single expression. Multi-character
// operators are listed first so "<=" never lexes as "<" followed by "=".
var expressionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `==|!=|<=|>=|[-+*/%<>!]`},
	{Name: "Punct", Pattern: `[()\[\]]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// ScanExpression splits expression text into tokens, dropping whitespace.
func ScanExpression(text string) ([]token.Token, error) {
	lex, err := expressionLexer.LexString("", text)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("invalid character in %q: %w", text, err)
	}

	symbols := expressionLexer.Symbols()
	var tokens []token.Token
	for _, tok := range raw {
		if tok.EOF() || tok.Type == symbols["Whitespace"] {
			continue
		}
		tokens = append(tokens, token.Token{
			Type:   classify(tok, symbols),
			Lexeme: tok.Value,
			Column: tok.Pos.Column,
		})
	}
	return tokens, nil
}

func classify(tok lexer.Token, symbols map[string]lexer.TokenType) token.Type {
	switch tok.Type {
	case symbols["Ident"]:
		return token.IDENTIFIER
	case symbols["Number"]:
		return token.NUMBER
	case symbols["Operator"]:
		return token.OPERATOR
	}
	switch tok.Value {
	case "(":
		return token.LEFT_PAREN
	case ")":
		return token.RIGHT_PAREN
	case "[":
		return token.LEFT_BRACKET
	case "]":
		return token.RIGHT_BRACKET
	}
	return token.ILLEGAL
}
