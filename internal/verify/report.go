package verify

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"progcheck/internal/ir"
	"progcheck/internal/smt"
	"progcheck/internal/solver"
)

type Status int

const (
	// Inconclusive means the solver failed or could not decide. It never
	// implies a counterexample.
	Inconclusive Status = iota
	Verified
	Violated
	Equivalent
	NotEquivalent
)

func (s Status) String() string {
	switch s {
	case Verified:
		return "verified"
	case Violated:
		return "violated"
	case Equivalent:
		return "equivalent"
	case NotEquivalent:
		return "not equivalent"
	default:
		return "inconclusive"
	}
}

// Violation is an assertion that fails under the counterexample.
type Violation struct {
	Line      int
	Assertion string // source form, e.g. "assert(y > 0)"
}

// Difference is an output the two programs disagree on.
type Difference struct {
	Output string
	First  int64
	Second int64
}

func (d Difference) String() string {
	return fmt.Sprintf("%s: %d vs %d", d.Output, d.First, d.Second)
}

// Report is the outcome of one verification or equivalence query.
type Report struct {
	Status Status
	Script *smt.Script
	Result solver.Result

	// Counterexample is the full solver model for Violated and
	// NotEquivalent outcomes.
	Counterexample solver.Model
	Violations     []Violation
	Differences    []Difference

	// Mismatch is set when the programs assign different variables; no
	// solver was consulted.
	Mismatch *smt.StructuralMismatchError

	// Err is the solver failure behind an Inconclusive outcome.
	Err error
}

// Inputs returns the counterexample restricted to free inputs.
func (r *Report) Inputs() solver.Model {
	inputs := solver.Model{}
	for name, v := range r.Counterexample {
		if strings.HasSuffix(name, "_0") {
			inputs[name] = v
		}
	}
	return inputs
}

// Reason explains an Inconclusive outcome.
func (r *Report) Reason() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Result.Reason != "" {
		return r.Result.Reason
	}
	return "solver answered unknown"
}

func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(r.Status.String())
	switch r.Status {
	case Violated:
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "\n  line %d: %s", v.Line, v.Assertion)
		}
		fmt.Fprintf(&b, "\n  counterexample: %s", r.Witness())
	case NotEquivalent:
		if r.Mismatch != nil {
			fmt.Fprintf(&b, "\n  %s", r.Mismatch)
			break
		}
		for _, d := range r.Differences {
			fmt.Fprintf(&b, "\n  %s", d)
		}
		fmt.Fprintf(&b, "\n  counterexample: %s", r.Witness())
	case Inconclusive:
		fmt.Fprintf(&b, ": %s", r.Reason())
	}
	return b.String()
}

// Witness renders the counterexample inputs, or the whole model when no
// input appears in it.
func (r *Report) Witness() string {
	inputs := r.Inputs()
	if len(inputs) == 0 {
		return r.Counterexample.String()
	}
	return inputs.String()
}

// violations evaluates the assertions of instrs under model and returns
// those that fail. Assertions that cannot be evaluated, such as array
// reads the model gives no value for, are left out.
func violations(instrs []ir.Instruction, model solver.Model, sources map[int]string) []Violation {
	env := ir.Env(maps.Clone(model))
	var out []Violation
	for _, inst := range instrs {
		a, ok := inst.(*ir.Assert)
		if !ok {
			continue
		}
		v, err := ir.EvalExpr(a.Cond, env)
		if err != nil || v != 0 {
			continue
		}
		source, ok := sources[a.Line]
		if !ok {
			source = "assert(" + a.Cond.String() + ")"
		}
		out = append(out, Violation{Line: a.Line, Assertion: source})
	}
	return out
}

// differences compares the outputs of two programs under model.
func differences(first, second map[string]ir.Name, renamer smt.Renamer, model solver.Model) []Difference {
	var out []Difference
	for _, output := range slices.Sorted(maps.Keys(first)) {
		a, okA := model[first[output].String()]
		b, okB := model[renamer.Name(second[output]).String()]
		if !okA || !okB || a == b {
			continue
		}
		out = append(out, Difference{Output: output, First: a, Second: b})
	}
	return out
}
