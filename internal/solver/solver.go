// Package solver decides constraint scripts produced by the smt package.
//
// A Solver answers sat, unsat or unknown for a script, with a model for sat
// answers. The verdict is interpreted by the caller: the encoder arranges
// for sat to mean "counterexample found".
package solver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"progcheck/internal/smt"
)

type Verdict int

const (
	Unknown Verdict = iota
	Sat
	Unsat
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model assigns an integer to every declared constant the solver reports.
type Model map[string]int64

func (m Model) String() string {
	parts := make([]string, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s = %d", name, m[name]))
	}
	return strings.Join(parts, ", ")
}

type Result struct {
	Verdict Verdict
	Model   Model
	// Reason explains an Unknown verdict.
	Reason string
}

// ErrMissingModel marks a sat result that carries no model. It is a broken
// solver contract, not the absence of a counterexample.
var ErrMissingModel = errors.New("solver answered sat without a model")

// Validate checks the result contract.
func (r Result) Validate() error {
	if r.Verdict == Sat && r.Model == nil {
		return ErrMissingModel
	}
	return nil
}

// Solver decides a script. Solve blocks until an answer is available or ctx
// is done.
type Solver interface {
	Solve(ctx context.Context, script *smt.Script) (Result, error)
}

// Error reports a failing or misbehaving solver. It is never a verdict about
// the analyzed program.
type Error struct {
	Solver string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s solver: %s: %v", e.Solver, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s solver: %s", e.Solver, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
