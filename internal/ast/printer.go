package ast

import (
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "    "

func (p *Program) String() string {
	var b strings.Builder
	writeBlock(&b, p.Body, 0)
	return b.String()
}

func writeBlock(b *strings.Builder, stmts []Stmt, depth int) {
	for _, stmt := range stmts {
		writeStmt(b, stmt, depth)
	}
}

func writeStmt(b *strings.Builder, stmt Stmt, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch s := stmt.(type) {
	case *Assignment:
		b.WriteString(indent + s.String() + ";\n")
	case *Assert:
		b.WriteString(indent + s.String() + ";\n")
	case *If:
		b.WriteString(indent + Header(s) + " {\n")
		writeBlock(b, s.Then, depth+1)
		if len(s.Else) > 0 {
			b.WriteString(indent + "} else {\n")
			writeBlock(b, s.Else, depth+1)
		}
		b.WriteString(indent + "}\n")
	case *While:
		b.WriteString(indent + Header(s) + " {\n")
		writeBlock(b, s.Body, depth+1)
		b.WriteString(indent + "}\n")
	case *For:
		b.WriteString(indent + Header(s) + " {\n")
		writeBlock(b, s.Body, depth+1)
		b.WriteString(indent + "}\n")
	}
}

// Header renders the first line of a statement without its body and
// without the opening brace, e.g. "while (i < n)" or "y := x + 1".
func Header(stmt Stmt) string {
	switch s := stmt.(type) {
	case *If:
		return fmt.Sprintf("if (%s)", s.Cond)
	case *While:
		return fmt.Sprintf("while (%s)", s.Cond)
	case *For:
		return fmt.Sprintf("for (%s; %s; %s)", s.Init, s.Cond, s.Update)
	default:
		return stmt.String()
	}
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s := %s", a.Target, a.Value)
}

func (a *Assert) String() string {
	return fmt.Sprintf("assert(%s)", a.Cond)
}

func (i *If) String() string {
	var b strings.Builder
	writeStmt(&b, i, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (w *While) String() string {
	var b strings.Builder
	writeStmt(&b, w, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (f *For) String() string {
	var b strings.Builder
	writeStmt(&b, f, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (l *Literal) String() string {
	return strconv.FormatInt(l.Value, 10)
}

func (v *Variable) String() string {
	return v.Name
}

func (a *ArrayAccess) String() string {
	return fmt.Sprintf("%s[%s]", a.Array, a.Index)
}

// String parenthesizes operands only where the parser's left-first split
// would otherwise build a different tree from the rendered text.
func (b *BinaryOp) String() string {
	left := b.Left.String()
	if child, ok := b.Left.(*BinaryOp); ok && child.Op.Priority() <= b.Op.Priority() {
		left = "(" + left + ")"
	}
	right := b.Right.String()
	if child, ok := b.Right.(*BinaryOp); ok && child.Op.Priority() < b.Op.Priority() {
		right = "(" + right + ")"
	}
	return fmt.Sprintf("%s %s %s", left, b.Op, right)
}

func (u *UnaryOp) String() string {
	if _, ok := u.Operand.(*BinaryOp); ok {
		return fmt.Sprintf("%s(%s)", u.Op, u.Operand)
	}
	return fmt.Sprintf("%s%s", u.Op, u.Operand)
}
