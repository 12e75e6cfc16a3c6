package parser

import (
	"regexp"
	"strings"

	"progcheck/internal/ast"
	"progcheck/token"
)

var (
	keywordPattern     = regexp.MustCompile(`^(if|while|for|else)\b`)
	ifHeaderPattern    = regexp.MustCompile(`^if\s*\((.*)\)$`)
	whileHeaderPattern = regexp.MustCompile(`^while\s*\((.*)\)$`)
	forHeaderPattern   = regexp.MustCompile(`^for\s*\((.*)\)$`)
	assignmentPattern  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:=\s*(.*?)\s*;$`)
	clausePattern      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:=\s*(.*?)\s*$`)
	assertPattern      = regexp.MustCompile(`^assert\s*\((.*)\)\s*;$`)
)

// sourceLine is one physical line of program text with comments removed.
type sourceLine struct {
	number int
	text   string
}

// Parser turns a slice of source lines into statements. Block bodies are
// handed to a fresh Parser so nesting goes through the same entry point.
type Parser struct {
	lines   []sourceLine
	current int
}

// Parse parses a whole program. On error no partial program is returned.
func Parse(text string) (*ast.Program, error) {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]sourceLine, 0, len(raw))
	for i, line := range raw {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		lines = append(lines, sourceLine{number: i + 1, text: line})
	}

	body, err := parseLines(lines)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Body: body}, nil
}

func parseLines(lines []sourceLine) ([]ast.Stmt, error) {
	p := &Parser{lines: append([]sourceLine(nil), lines...)}
	var stmts []ast.Stmt
	for p.skipBlank() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// skipBlank advances past empty lines and reports whether input remains.
func (p *Parser) skipBlank() bool {
	for p.current < len(p.lines) {
		text := strings.TrimSpace(p.lines[p.current].text)
		if text != "" {
			p.lines[p.current].text = text
			return true
		}
		p.current++
	}
	return false
}

// pushBack replaces the current line with the text left over after a
// statement so the next statement can start mid-line.
func (p *Parser) pushBack(rest string) {
	if strings.TrimSpace(rest) == "" {
		p.current++
		return
	}
	p.lines[p.current].text = strings.TrimSpace(rest)
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	line := p.lines[p.current]
	if line.text[0] == '}' {
		return nil, errorAt(line.number, "unexpected '}'")
	}

	if m := keywordPattern.FindStringSubmatch(line.text); m != nil {
		switch m[1] {
		case token.IF:
			return p.parseIf()
		case token.WHILE:
			return p.parseWhile()
		case token.FOR:
			return p.parseFor()
		default:
			return nil, errorAt(line.number, "'else' without matching 'if'")
		}
	}
	return p.parseSimple()
}

// parseSimple parses an assignment or an assert terminated by ';'.
func (p *Parser) parseSimple() (ast.Stmt, error) {
	line := p.lines[p.current]
	end := indexTopLevel(line.text, ';')
	if end < 0 {
		return nil, errorAt(line.number, "expected ';' after statement %q", line.text)
	}
	text := line.text[:end+1]
	pos := ast.Position{Line: line.number}

	var stmt ast.Stmt
	if m := assertPattern.FindStringSubmatch(text); m != nil {
		cond, err := parseExpressionText(m[1], line.number)
		if err != nil {
			return nil, err
		}
		stmt = &ast.Assert{Pos: pos, Cond: cond}
	} else if m := assignmentPattern.FindStringSubmatch(text); m != nil {
		if token.IsKeyword(m[1]) {
			return nil, errorAt(line.number, "cannot assign to keyword %q", m[1])
		}
		value, err := parseExpressionText(m[2], line.number)
		if err != nil {
			return nil, err
		}
		stmt = &ast.Assignment{Pos: pos, Target: m[1], Value: value}
	} else {
		return nil, errorAt(line.number, "unrecognized statement %q", text)
	}

	p.pushBack(line.text[end+1:])
	return stmt, nil
}

// splitHeader returns the trimmed text before the opening brace of the
// current line and the brace column.
func (p *Parser) splitHeader(shape string) (string, int, error) {
	line := p.lines[p.current]
	brace := strings.IndexByte(line.text, '{')
	if brace < 0 {
		return "", 0, errorAt(line.number, "expected '{' after header, want %s", shape)
	}
	return strings.TrimSpace(line.text[:brace]), brace, nil
}

// parseBlock extracts the text between the brace at column col of the
// current line and its matching '}' by counting brace depth across lines,
// parses it, and leaves the parser on whatever follows the closing brace.
func (p *Parser) parseBlock(col int) ([]ast.Stmt, error) {
	start := p.lines[p.current]
	var body []sourceLine
	depth := 0
	for i := p.current; i < len(p.lines); i++ {
		text := p.lines[i].text
		from := 0
		if i == p.current {
			from = col
		}
		segment := from
		for j := from; j < len(text); j++ {
			switch text[j] {
			case '{':
				depth++
				if depth == 1 {
					segment = j + 1
				}
			case '}':
				depth--
				if depth == 0 {
					body = append(body, sourceLine{number: p.lines[i].number, text: text[segment:j]})
					stmts, err := parseLines(body)
					if err != nil {
						return nil, err
					}
					p.current = i
					p.pushBack(text[j+1:])
					return stmts, nil
				}
			}
		}
		body = append(body, sourceLine{number: p.lines[i].number, text: text[segment:]})
	}
	return nil, errorAt(start.number, "unterminated block: missing '}'")
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	line := p.lines[p.current]
	header, brace, err := p.splitHeader("'if (<cond>) {'")
	if err != nil {
		return nil, err
	}
	m := ifHeaderPattern.FindStringSubmatch(header)
	if m == nil {
		return nil, errorAt(line.number, "malformed if header %q, want 'if (<cond>) {'", header)
	}
	cond, err := parseExpressionText(m[1], line.number)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock(brace)
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{Pos: ast.Position{Line: line.number}, Cond: cond, Then: then}
	if !p.skipBlank() || keywordPattern.FindString(p.lines[p.current].text) != "else" {
		return stmt, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(p.lines[p.current].text, "else"))
	if keywordPattern.FindString(rest) == "if" {
		p.lines[p.current].text = rest
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = []ast.Stmt{nested}
		return stmt, nil
	}
	if !strings.HasPrefix(rest, "{") {
		return nil, errorAt(p.lines[p.current].number, "expected '{' after else")
	}
	p.lines[p.current].text = rest
	stmt.Else, err = p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	line := p.lines[p.current]
	header, brace, err := p.splitHeader("'while (<cond>) {'")
	if err != nil {
		return nil, err
	}
	m := whileHeaderPattern.FindStringSubmatch(header)
	if m == nil {
		return nil, errorAt(line.number, "malformed while header %q, want 'while (<cond>) {'", header)
	}
	cond, err := parseExpressionText(m[1], line.number)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(brace)
	if err != nil {
		return nil, err
	}
	return &ast.While{Pos: ast.Position{Line: line.number}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	line := p.lines[p.current]
	header, brace, err := p.splitHeader("'for (<init>; <cond>; <update>) {'")
	if err != nil {
		return nil, err
	}
	m := forHeaderPattern.FindStringSubmatch(header)
	if m == nil {
		return nil, errorAt(line.number, "malformed for header %q, want 'for (<init>; <cond>; <update>) {'", header)
	}
	clauses := strings.Split(m[1], ";")
	if len(clauses) != 3 {
		return nil, errorAt(line.number, "for header needs three clauses separated by ';', got %d", len(clauses))
	}

	pos := ast.Position{Line: line.number}
	init, err := parseClause(clauses[0], pos, "init")
	if err != nil {
		return nil, err
	}
	cond, err := parseExpressionText(clauses[1], line.number)
	if err != nil {
		return nil, err
	}
	update, err := parseClause(clauses[2], pos, "update")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(brace)
	if err != nil {
		return nil, err
	}
	return &ast.For{Pos: pos, Init: init, Cond: cond, Update: update, Body: body}, nil
}

func parseClause(text string, pos ast.Position, role string) (*ast.Assignment, error) {
	m := clausePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, errorAt(pos.Line, "for %s clause %q is not an assignment", role, strings.TrimSpace(text))
	}
	value, err := parseExpressionText(m[2], pos.Line)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Pos: pos, Target: m[1], Value: value}, nil
}

// indexTopLevel finds c outside of parentheses and brackets.
func indexTopLevel(text string, c byte) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
