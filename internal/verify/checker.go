// Package verify runs the analysis pipeline and maps solver answers to
// verification and equivalence outcomes.
//
// The pipeline is parse, build SSA, optimize, build CFG, encode and solve.
// Only the solve step blocks and observes the context.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tliron/commonlog"

	"progcheck/internal/ast"
	"progcheck/internal/cfg"
	"progcheck/internal/ir"
	"progcheck/internal/parser"
	"progcheck/internal/smt"
	"progcheck/internal/solver"
)

type Options struct {
	Build    ir.BuildOptions
	Optimize bool
	// Timeout bounds each solver call; zero means no limit.
	Timeout time.Duration
}

// Analysis holds every stage of the pipeline for one program.
type Analysis struct {
	Program   *ast.Program
	SSA       *ir.Program
	Optimized *ir.Program
	Stats     ir.OptimizeStats
	CFG       *cfg.Graph
}

// Checked returns the instructions verification is encoded from.
func (a *Analysis) Checked() []ir.Instruction {
	if a.Optimized != nil {
		return a.Optimized.Instructions
	}
	return a.SSA.Instructions
}

type Checker struct {
	solver  solver.Solver
	options Options
	log     commonlog.Logger
}

func NewChecker(s solver.Solver, options Options) *Checker {
	return &Checker{
		solver:  s,
		options: options,
		log:     commonlog.GetLogger("progcheck.verify"),
	}
}

// Analyze runs the computational stages on source. Syntax errors abort the
// analysis and nothing else is produced.
func (c *Checker) Analyze(source string) (*Analysis, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	program, err := ir.NewBuilder(c.options.Build).Build(prog)
	if err != nil {
		return nil, err
	}
	if err := ir.CheckDefinitions(program.Instructions); err != nil {
		return nil, fmt.Errorf("malformed SSA: %w", err)
	}

	analysis := &Analysis{
		Program: prog,
		SSA:     program,
		CFG:     cfg.Build(prog),
	}
	if c.options.Optimize {
		analysis.Optimized, analysis.Stats = ir.OptimizeProgram(program)
		c.log.Debugf("optimized: %d propagated, %d folded, %d removed",
			analysis.Stats.Propagated, analysis.Stats.Folded, analysis.Stats.Removed)
	}
	return analysis, nil
}

// Verify checks that every assertion in source holds for all inputs.
func (c *Checker) Verify(ctx context.Context, source string) (*Report, error) {
	analysis, err := c.Analyze(source)
	if err != nil {
		return nil, err
	}
	return c.VerifyAnalysis(ctx, analysis)
}

// VerifyAnalysis checks an analysis produced by Analyze.
func (c *Checker) VerifyAnalysis(ctx context.Context, analysis *Analysis) (*Report, error) {
	instrs := analysis.Checked()
	script, err := smt.Encode(instrs)
	if err != nil {
		return nil, err
	}

	report := &Report{Script: script}
	result, err := c.solve(ctx, script)
	if err != nil {
		return inconclusive(report, err)
	}
	report.Result = result

	switch result.Verdict {
	case solver.Unsat:
		report.Status = Verified
	case solver.Sat:
		report.Status = Violated
		report.Counterexample = result.Model
		report.Violations = violations(instrs, result.Model, assertSources(analysis.Program))
	default:
		report.Status = Inconclusive
	}
	c.log.Infof("verification: %s", report.Status)
	return report, nil
}

// Equivalence checks that first and second end with the same value in every
// variable they assign, for all inputs. Assertions play no part.
func (c *Checker) Equivalence(ctx context.Context, first, second string) (*Report, error) {
	left, err := c.Analyze(first)
	if err != nil {
		return nil, fmt.Errorf("first program: %w", err)
	}
	right, err := c.Analyze(second)
	if err != nil {
		return nil, fmt.Errorf("second program: %w", err)
	}

	// Raw SSA: dead-code elimination may drop output writes.
	a, b := left.SSA.Instructions, right.SSA.Instructions
	script, err := smt.EncodeEquivalence(a, b)
	var mismatch *smt.StructuralMismatchError
	if errors.As(err, &mismatch) {
		c.log.Infof("equivalence: %s", mismatch)
		return &Report{Status: NotEquivalent, Mismatch: mismatch}, nil
	}
	if err != nil {
		return nil, err
	}

	report := &Report{Script: script}
	result, err := c.solve(ctx, script)
	if err != nil {
		return inconclusive(report, err)
	}
	report.Result = result

	switch result.Verdict {
	case solver.Unsat:
		report.Status = Equivalent
	case solver.Sat:
		report.Status = NotEquivalent
		report.Counterexample = result.Model
		renamer := smt.Renamer{Suffix: smt.SecondSuffix, KeepInputs: true}
		report.Differences = differences(smt.Outputs(a), smt.Outputs(b), renamer, result.Model)
	default:
		report.Status = Inconclusive
	}
	c.log.Infof("equivalence: %s", report.Status)
	return report, nil
}

func (c *Checker) solve(ctx context.Context, script *smt.Script) (solver.Result, error) {
	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	result, err := c.solver.Solve(ctx, script)
	if err != nil {
		var solverErr *solver.Error
		if !errors.As(err, &solverErr) {
			err = &solver.Error{Solver: fmt.Sprintf("%T", c.solver), Reason: "failed", Err: err}
		}
		return solver.Result{}, err
	}
	if err := result.Validate(); err != nil {
		return solver.Result{}, &solver.Error{Solver: "result", Reason: "broken contract", Err: err}
	}
	return result, nil
}

// inconclusive turns a solver failure into an Inconclusive report.
func inconclusive(report *Report, err error) (*Report, error) {
	if errors.Is(err, solver.ErrMissingModel) {
		// A sat answer without a model is an internal failure, not a
		// verdict about the program.
		return nil, err
	}
	report.Status = Inconclusive
	report.Err = err
	return report, nil
}

// assertSources maps source lines to the rendered assertion on that line.
func assertSources(prog *ast.Program) map[int]string {
	sources := map[int]string{}
	var walk func([]ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assert:
				if _, ok := sources[s.Pos.Line]; !ok {
					sources[s.Pos.Line] = s.String()
				}
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			case *ast.While:
				walk(s.Body)
			case *ast.For:
				walk(s.Body)
			}
		}
	}
	walk(prog.Body)
	return sources
}
