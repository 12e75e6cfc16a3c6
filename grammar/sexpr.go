package grammar

import (
	"strconv"
	"strings"
)

func (d *Document) String() string {
	parts := make([]string, len(d.Exprs))
	for i, e := range d.Exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, "\n")
}

func (e *SExpr) String() string {
	switch {
	case e.List != nil:
		parts := make([]string, len(e.List.Items))
		for i, item := range e.List.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case e.Number != nil:
		return *e.Number
	case e.Symbol != nil:
		return *e.Symbol
	case e.Str != nil:
		return *e.Str
	}
	return ""
}

// IsList reports whether e is a parenthesized list, possibly empty.
func (e *SExpr) IsList() bool {
	return e.List != nil
}

// Items returns the elements of a list, or nil for an atom.
func (e *SExpr) Items() []*SExpr {
	if e.List == nil {
		return nil
	}
	return e.List.Items
}

// IsSymbol reports whether e is the symbol name.
func (e *SExpr) IsSymbol(name string) bool {
	return e.Symbol != nil && *e.Symbol == name
}

// SymbolName returns the symbol text, or "" when e is not a symbol.
func (e *SExpr) SymbolName() string {
	if e.Symbol == nil {
		return ""
	}
	return *e.Symbol
}

// Head returns the leading symbol of a list such as (assert ...), or "".
func (e *SExpr) Head() string {
	items := e.Items()
	if len(items) == 0 {
		return ""
	}
	return items[0].SymbolName()
}

// Unquote returns the content of a string literal with "" unescaped.
func (e *SExpr) Unquote() string {
	if e.Str == nil {
		return ""
	}
	s := strings.TrimSuffix(strings.TrimPrefix(*e.Str, `"`), `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

// Int returns the value of a numeral or a negated numeral (- N).
func (e *SExpr) Int() (int64, bool) {
	if e.Number != nil {
		v, err := strconv.ParseInt(*e.Number, 10, 64)
		return v, err == nil
	}
	items := e.Items()
	if len(items) == 2 && items[0].IsSymbol("-") && items[1].Number != nil {
		v, err := strconv.ParseInt("-"+*items[1].Number, 10, 64)
		return v, err == nil
	}
	return 0, false
}
