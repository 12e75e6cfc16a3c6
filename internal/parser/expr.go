package parser

import (
	"strconv"

	"progcheck/internal/ast"
	"progcheck/token"
)

// parseExpressionText tokenizes text and parses it with the left-first,
// fixed-priority splitting rule.
func parseExpressionText(text string, line int) (ast.Expr, error) {
	tokens, err := ScanExpression(text)
	if err != nil {
		return nil, errorAt(line, "%v", err)
	}
	return parseExpression(tokens, line)
}

// parseExpression is deliberately not precedence-aware: it walks
// ast.BinaryOperators in order and splits on the first occurrence of the
// first operator present at nesting depth zero.
func parseExpression(tokens []token.Token, line int) (ast.Expr, error) {
	if len(tokens) == 0 {
		return nil, errorAt(line, "empty expression")
	}
	tokens = stripParens(tokens)

	for _, op := range ast.BinaryOperators {
		idx := findOperator(tokens, op)
		if idx < 0 {
			continue
		}
		if idx == len(tokens)-1 {
			return nil, errorAt(line, "missing right operand for %q", op)
		}
		left, err := parseExpression(tokens[:idx], line)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(tokens[idx+1:], line)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: op, Left: left, Right: right}, nil
	}

	return parseOperand(tokens, line)
}

func parseOperand(tokens []token.Token, line int) (ast.Expr, error) {
	first := tokens[0]
	switch first.Type {
	case token.OPERATOR:
		if len(tokens) == 1 {
			return nil, errorAt(line, "operator %q without operand", first.Lexeme)
		}
		switch ast.Operator(first.Lexeme) {
		case ast.OpNot:
			operand, err := parseExpression(tokens[1:], line)
			if err != nil {
				return nil, err
			}
			return &ast.UnaryOp{Op: ast.OpNot, Operand: operand}, nil
		case ast.OpSub:
			if len(tokens) == 2 && tokens[1].Type == token.NUMBER {
				return parseLiteral("-"+tokens[1].Lexeme, line)
			}
			operand, err := parseExpression(tokens[1:], line)
			if err != nil {
				return nil, err
			}
			return &ast.BinaryOp{Op: ast.OpSub, Left: &ast.Literal{Value: 0}, Right: operand}, nil
		}
		return nil, errorAt(line, "unexpected operator %q", first.Lexeme)

	case token.NUMBER:
		if len(tokens) == 1 {
			return parseLiteral(first.Lexeme, line)
		}

	case token.IDENTIFIER:
		if len(tokens) == 1 {
			return &ast.Variable{Name: first.Lexeme}, nil
		}
		if tokens[1].Type == token.LEFT_BRACKET && matching(tokens, 1) == len(tokens)-1 {
			if len(tokens) == 3 {
				return nil, errorAt(line, "empty index in %s[]", first.Lexeme)
			}
			index, err := parseExpression(tokens[2:len(tokens)-1], line)
			if err != nil {
				return nil, err
			}
			return &ast.ArrayAccess{Array: first.Lexeme, Index: index}, nil
		}
	}
	return nil, errorAt(line, "malformed expression %q", render(tokens))
}

func parseLiteral(text string, line int) (ast.Expr, error) {
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, errorAt(line, "integer literal %s out of range", text)
	}
	return &ast.Literal{Value: value}, nil
}

// findOperator returns the index of the first depth-zero occurrence of op
// that is not in unary position, or -1.
func findOperator(tokens []token.Token, op ast.Operator) int {
	depth := 0
	for i, tok := range tokens {
		switch tok.Type {
		case token.LEFT_PAREN, token.LEFT_BRACKET:
			depth++
		case token.RIGHT_PAREN, token.RIGHT_BRACKET:
			depth--
		case token.OPERATOR:
			if depth == 0 && tok.Lexeme == string(op) && !unaryPosition(tokens, i) {
				return i
			}
		}
	}
	return -1
}

// unaryPosition reports whether the operator at i starts an operand rather
// than joining two.
func unaryPosition(tokens []token.Token, i int) bool {
	if i == 0 {
		return true
	}
	switch tokens[i-1].Type {
	case token.OPERATOR, token.LEFT_PAREN, token.LEFT_BRACKET:
		return true
	}
	return false
}

// stripParens removes parentheses that enclose the whole expression.
func stripParens(tokens []token.Token) []token.Token {
	for len(tokens) > 2 && tokens[0].Type == token.LEFT_PAREN && matching(tokens, 0) == len(tokens)-1 {
		tokens = tokens[1 : len(tokens)-1]
	}
	return tokens
}

// matching returns the index of the bracket closing the one at open, or -1.
func matching(tokens []token.Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.LEFT_PAREN, token.LEFT_BRACKET:
			depth++
		case token.RIGHT_PAREN, token.RIGHT_BRACKET:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func render(tokens []token.Token) string {
	var text string
	for i, tok := range tokens {
		if i > 0 {
			text += " "
		}
		text += tok.Lexeme
	}
	return text
}
