// Package token SPDX-License-Identifier: Apache-2.0
package token

// Type classifies a lexeme of an expression.
type Type int

type Token struct {
	Type   Type
	Lexeme string
	Column int // 1-based, relative to the expression text
}

const (
	ILLEGAL Type = iota

	// Identifiers + literals
	IDENTIFIER // x, total, a ...
	NUMBER     // 1234567890

	// Operators
	OPERATOR // + - * / % == != < <= > >= !

	// Delimiters
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
)

// Keywords
const (
	IF     = "if"
	ELSE   = "else"
	WHILE  = "while"
	FOR    = "for"
	ASSERT = "assert"
)

// Keywords lists the reserved words in the order editors offer them.
var Keywords = []string{IF, ELSE, WHILE, FOR, ASSERT}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	for _, kw := range Keywords {
		if kw == ident {
			return true
		}
	}
	return false
}

func (t Type) String() string {
	switch t {
	case IDENTIFIER:
		return "IDENTIFIER"
	case NUMBER:
		return "NUMBER"
	case OPERATOR:
		return "OPERATOR"
	case LEFT_PAREN:
		return "("
	case RIGHT_PAREN:
		return ")"
	case LEFT_BRACKET:
		return "["
	case RIGHT_BRACKET:
		return "]"
	default:
		return "ILLEGAL"
	}
}
