package solver

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"progcheck/grammar"
	"progcheck/internal/smt"
)

const (
	DefaultBound         = 8
	DefaultMaxCandidates = 1 << 20
)

// checkEvery is the number of candidates examined between context checks.
const checkEvery = 1024

// Bounded decides scripts without an external process. Constants fixed by
// an equation (= c term) are computed; the remaining constants are searched
// over [-Bound, Bound]. A script with nothing left to search is decided
// exactly. Otherwise only sat is conclusive.
type Bounded struct {
	Bound         int64
	MaxCandidates int
}

type definition struct {
	name string
	term *grammar.SExpr
}

// problem is a script split into computed constants, searched constants and
// the remaining constraints.
type problem struct {
	constants   []string
	free        []string
	definitions []definition
	constraints []*grammar.SExpr
}

func (b Bounded) Solve(ctx context.Context, script *smt.Script) (Result, error) {
	log := commonlog.GetLogger("progcheck.solver")

	for _, d := range script.Declarations {
		if d.IsFunction() {
			return Result{Verdict: Unknown, Reason: fmt.Sprintf("uninterpreted function %s is not supported", d.Name)}, nil
		}
	}

	doc, err := grammar.ParseString("script.smt2", script.String())
	if err != nil {
		return Result{}, &Error{Solver: "bounded", Reason: "cannot read script", Err: err}
	}
	p, err := split(script.Constants(), doc)
	if err != nil {
		return Result{}, &Error{Solver: "bounded", Reason: "cannot read script", Err: err}
	}
	log.Debugf("bounded search: %d computed, %d free, %d constraints",
		len(p.definitions), len(p.free), len(p.constraints))
	if p.contradictory() {
		return Result{Verdict: Unsat}, nil
	}

	bound := b.Bound
	if bound <= 0 {
		bound = DefaultBound
	}
	limit := b.MaxCandidates
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}

	values := make([]int64, len(p.free))
	for i := range values {
		values[i] = -bound
	}

	undetermined := 0
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, &Error{Solver: "bounded", Reason: "canceled", Err: err}
			}
		}
		if n == limit {
			return Result{Verdict: Unknown, Reason: fmt.Sprintf("search stopped after %d candidates", limit)}, nil
		}

		model, ok, err := p.check(values)
		switch {
		case err != nil:
			undetermined++
		case ok:
			return Result{Verdict: Sat, Model: model}, nil
		}

		if !next(values, bound) {
			break
		}
	}

	if len(p.free) == 0 {
		if undetermined > 0 {
			return Result{Verdict: Unknown, Reason: "constraints are not determined"}, nil
		}
		return Result{Verdict: Unsat}, nil
	}
	return Result{Verdict: Unknown, Reason: fmt.Sprintf("no model within bound %d", bound)}, nil
}

// next advances values to the following candidate, odometer style, and
// reports false once every candidate has been visited.
func next(values []int64, bound int64) bool {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] < bound {
			values[i]++
			return true
		}
		values[i] = -bound
	}
	return false
}

// check evaluates one candidate. Evaluation errors leave the candidate
// undetermined.
func (p *problem) check(values []int64) (Model, bool, error) {
	ev := &evaluator{env: make(map[string]int64, len(p.constants))}
	for i, name := range p.free {
		ev.env[name] = values[i]
	}
	for _, d := range p.definitions {
		v, err := ev.evalInt(d.term)
		if err != nil {
			return nil, false, err
		}
		ev.env[d.name] = v
	}
	for _, c := range p.constraints {
		ok, err := ev.evalBool(c)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}
	model := make(Model, len(p.constants))
	for _, name := range p.constants {
		model[name] = ev.env[name]
	}
	return model, true, nil
}

// contradictory reports whether some constraint is the literal false, which
// no candidate can satisfy.
func (p *problem) contradictory() bool {
	for _, c := range p.constraints {
		if c.IsSymbol("false") {
			return true
		}
	}
	return false
}

// split separates definitional equalities from the other assertions and
// orders the definitions so every definition follows those it reads. A
// definition caught in a cycle is turned back into a constraint and its
// constant becomes free.
func split(constants []string, doc *grammar.Document) (*problem, error) {
	declared := make(map[string]bool, len(constants))
	for _, c := range constants {
		declared[c] = true
	}

	p := &problem{constants: constants}
	pending := map[string]*grammar.SExpr{}
	var order []string
	for _, cmd := range doc.Exprs {
		if cmd.Head() != "assert" {
			continue
		}
		items := cmd.Items()
		if len(items) != 2 {
			return nil, fmt.Errorf("%s: malformed assert", cmd.Pos)
		}
		formula := items[1]
		if name, term, ok := definitional(formula, declared); ok && pending[name] == nil {
			pending[name] = term
			order = append(order, name)
			continue
		}
		p.constraints = append(p.constraints, formula)
	}

	resolved := map[string]bool{}
	for len(order) > 0 {
		progress := false
		remaining := order[:0]
		for _, name := range order {
			if ready(pending[name], pending, resolved) {
				p.definitions = append(p.definitions, definition{name: name, term: pending[name]})
				resolved[name] = true
				progress = true
				continue
			}
			remaining = append(remaining, name)
		}
		order = remaining
		if !progress {
			demoted := order[0]
			p.constraints = append(p.constraints, equation(demoted, pending[demoted]))
			delete(pending, demoted)
			order = order[1:]
		}
	}

	for _, c := range constants {
		if !resolved[c] {
			p.free = append(p.free, c)
		}
	}
	return p, nil
}

// definitional recognizes (= c term) where c is a declared constant that
// does not occur in term.
func definitional(formula *grammar.SExpr, declared map[string]bool) (string, *grammar.SExpr, bool) {
	items := formula.Items()
	if formula.Head() != "=" || len(items) != 3 {
		return "", nil, false
	}
	name := unquote(items[1].SymbolName())
	if !declared[name] || mentions(items[2], name) {
		return "", nil, false
	}
	return name, items[2], true
}

func mentions(t *grammar.SExpr, name string) bool {
	if s := t.SymbolName(); s != "" {
		return unquote(s) == name
	}
	for _, item := range t.Items() {
		if mentions(item, name) {
			return true
		}
	}
	return false
}

// ready reports whether every defined constant t reads is resolved.
func ready(t *grammar.SExpr, pending map[string]*grammar.SExpr, resolved map[string]bool) bool {
	if s := t.SymbolName(); s != "" {
		name := unquote(s)
		return pending[name] == nil || resolved[name]
	}
	for _, item := range t.Items() {
		if !ready(item, pending, resolved) {
			return false
		}
	}
	return true
}

func equation(name string, term *grammar.SExpr) *grammar.SExpr {
	eq, lhs := "=", name
	return &grammar.SExpr{List: &grammar.List{Items: []*grammar.SExpr{
		{Symbol: &eq},
		{Symbol: &lhs},
		term,
	}}}
}
