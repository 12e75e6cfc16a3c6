package smt

import (
	"fmt"
	"strings"
)

type Sort string

const IntSort Sort = "Int"

const (
	LogicNIA   = "QF_NIA"
	LogicUFNIA = "QF_UFNIA"
)

// Declaration introduces a constant, or a function when Params is non-empty.
type Declaration struct {
	Name   string
	Params []Sort
	Sort   Sort
}

func (d Declaration) IsFunction() bool {
	return len(d.Params) > 0
}

func (d Declaration) String() string {
	if !d.IsFunction() {
		return fmt.Sprintf("(declare-const %s %s)", d.Name, d.Sort)
	}
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("(declare-fun %s (%s) %s)", d.Name, strings.Join(params, " "), d.Sort)
}

// Script is an SMT-LIB2 constraint script: declarations in first-use order
// followed by assertions. Assertions hold the formula only, without the
// surrounding (assert ...).
type Script struct {
	Logic        string
	Declarations []Declaration
	Assertions   []string
}

func (s *Script) declare(d Declaration) {
	for _, existing := range s.Declarations {
		if existing.Name == d.Name {
			return
		}
	}
	s.Declarations = append(s.Declarations, d)
}

func (s *Script) assert(formula string) {
	s.Assertions = append(s.Assertions, formula)
}

// Constants returns the names of all declared constants.
func (s *Script) Constants() []string {
	var names []string
	for _, d := range s.Declarations {
		if !d.IsFunction() {
			names = append(names, d.Name)
		}
	}
	return names
}

// String serializes the script, one command per line, ending with
// (check-sat) and (get-model).
func (s *Script) String() string {
	var b strings.Builder
	logic := s.Logic
	if logic == "" {
		logic = LogicNIA
	}
	fmt.Fprintf(&b, "(set-logic %s)\n", logic)
	for _, d := range s.Declarations {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	for _, a := range s.Assertions {
		fmt.Fprintf(&b, "(assert %s)\n", a)
	}
	b.WriteString("(check-sat)\n(get-model)\n")
	return b.String()
}
