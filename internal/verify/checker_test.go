package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progcheck/internal/ir"
	"progcheck/internal/parser"
	"progcheck/internal/smt"
	"progcheck/internal/solver"
)

func bounded() *Checker {
	return NewChecker(solver.Bounded{}, Options{Optimize: true})
}

func TestAnalyze(t *testing.T) {
	analysis, err := NewChecker(&solver.Fake{}, Options{}).Analyze("x := 3; y := x + 1; assert(y > 0);")
	require.NoError(t, err)
	assert.Nil(t, analysis.Optimized)
	assert.Len(t, analysis.Checked(), 3)
	assert.Len(t, analysis.CFG.Nodes, 3)

	analysis, err = NewChecker(&solver.Fake{}, Options{Optimize: true}).Analyze("x := 3; y := x + 1; assert(y > 0);")
	require.NoError(t, err)
	assert.Equal(t, "y_1 := 4", analysis.Checked()[0].String())
	assert.Len(t, analysis.Checked(), 2)
	assert.Equal(t, 1, analysis.Stats.Removed)
}

func TestAnalyzeProducesWellFormedSSA(t *testing.T) {
	sources := []string{
		"i := 0; while (i < 3) { i := i + 1; } assert(i == 3);",
		"s := 0; for (i := 0; i < n; i := i + 1) { s := s + a[i]; } assert(s >= 0);",
		"if (x < 5) { y := 1; } else { if (x > 9) { y := 2; } } assert(y != 3);",
	}
	for _, source := range sources {
		for _, depth := range []int{0, 2} {
			checker := NewChecker(&solver.Fake{}, Options{Build: ir.BuildOptions{UnrollDepth: depth}, Optimize: true})
			analysis, err := checker.Analyze(source)
			require.NoError(t, err, source)
			assert.NoError(t, ir.CheckDefinitions(analysis.SSA.Instructions), source)
		}
	}
}

func TestVerifyHoldingAssertion(t *testing.T) {
	report, err := bounded().Verify(context.Background(), "x := 3; y := x + 1; assert(y > 0);")
	require.NoError(t, err)
	assert.Equal(t, Verified, report.Status)
	assert.Empty(t, report.Violations)
	assert.Equal(t, "verified", report.String())
}

func TestVerifyWithoutAssertions(t *testing.T) {
	report, err := bounded().Verify(context.Background(), "if (x < 5) { y := 1; } else { y := 2; }")
	require.NoError(t, err)
	assert.Equal(t, Verified, report.Status)
	assert.Equal(t, "verified", report.String())
}

func TestVerifyViolatedAssertion(t *testing.T) {
	source := "if (x < 5) { y := x + 1; } else { y := x - 1; }\nassert(y != 0);"
	report, err := bounded().Verify(context.Background(), source)
	require.NoError(t, err)

	require.Equal(t, Violated, report.Status)
	assert.Equal(t, []Violation{{Line: 2, Assertion: "assert(y != 0)"}}, report.Violations)
	assert.Equal(t, solver.Model{"x_0": -1}, report.Inputs())
	assert.Equal(t, "violated\n  line 2: assert(y != 0)\n  counterexample: x_0 = -1", report.String())
}

func TestVerifyReportsOnlyFailingAssertions(t *testing.T) {
	fake := &solver.Fake{Result: solver.Result{
		Verdict: solver.Sat,
		Model:   solver.Model{"a_0": 5, "b_0": -1},
	}}
	report, err := NewChecker(fake, Options{}).Verify(context.Background(), "assert(a > 0);\nassert(b > 0);\nassert(c[a] > 0);")
	require.NoError(t, err)

	assert.Equal(t, Violated, report.Status)
	assert.Equal(t, []Violation{{Line: 2, Assertion: "assert(b > 0)"}}, report.Violations)
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, smt.LogicUFNIA, fake.Calls()[0].Logic)
}

func TestVerifySolverFailureIsInconclusive(t *testing.T) {
	tests := []struct {
		name   string
		fake   *solver.Fake
		reason string
	}{
		{
			name:   "solver error",
			fake:   &solver.Fake{Err: &solver.Error{Solver: "z3", Reason: "malformed output"}},
			reason: "z3 solver: malformed output",
		},
		{
			name:   "plain error",
			fake:   &solver.Fake{Err: errors.New("connection reset")},
			reason: "connection reset",
		},
		{
			name:   "unknown",
			fake:   &solver.Fake{Result: solver.Result{Verdict: solver.Unknown, Reason: "no model within bound 8"}},
			reason: "no model within bound 8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewChecker(tt.fake, Options{}).Verify(context.Background(), "assert(x > 0);")
			require.NoError(t, err)
			assert.Equal(t, Inconclusive, report.Status)
			assert.Contains(t, report.Reason(), tt.reason)
			assert.Nil(t, report.Counterexample)
			assert.Empty(t, report.Violations)
		})
	}
}

func TestVerifySatWithoutModelIsInternalError(t *testing.T) {
	fake := &solver.Fake{Result: solver.Result{Verdict: solver.Sat}}
	_, err := NewChecker(fake, Options{}).Verify(context.Background(), "assert(x > 0);")
	assert.ErrorIs(t, err, solver.ErrMissingModel)
}

func TestVerifySyntaxErrorSkipsSolver(t *testing.T) {
	fake := &solver.Fake{}
	report, err := NewChecker(fake, Options{}).Verify(context.Background(), "if (x < 5 { y := 1; }")

	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Nil(t, report)
	assert.Empty(t, fake.Calls())
}

func TestVerifyTimeout(t *testing.T) {
	fake := &solver.Fake{Block: make(chan struct{})}
	defer close(fake.Block)

	report, err := NewChecker(fake, Options{Timeout: 20 * time.Millisecond}).Verify(context.Background(), "assert(x > 0);")
	require.NoError(t, err)
	assert.Equal(t, Inconclusive, report.Status)
	assert.ErrorIs(t, report.Err, context.DeadlineExceeded)
}

func TestEquivalence(t *testing.T) {
	first := "x := 3; y := x + 1; assert(y>0);"
	second := "x := 3; if (x<5) { y:=x+1; } else { y:=x-1; } assert(y>0);"

	report, err := bounded().Equivalence(context.Background(), first, second)
	require.NoError(t, err)
	assert.Equal(t, Equivalent, report.Status)
	assert.Equal(t, "equivalent", report.String())
}

func TestEquivalenceCounterexample(t *testing.T) {
	report, err := bounded().Equivalence(context.Background(), "y := x + 1;", "y := x + 2;")
	require.NoError(t, err)

	require.Equal(t, NotEquivalent, report.Status)
	assert.Equal(t, []Difference{{Output: "y", First: -7, Second: -6}}, report.Differences)
	assert.Equal(t, solver.Model{"x_0": -8}, report.Inputs())
	assert.Equal(t, "not equivalent\n  y: -7 vs -6\n  counterexample: x_0 = -8", report.String())
}

func TestEquivalenceStructuralMismatchSkipsSolver(t *testing.T) {
	fake := &solver.Fake{}
	report, err := NewChecker(fake, Options{}).Equivalence(context.Background(), "x := 1;", "x := 1; t := 2;")
	require.NoError(t, err)

	assert.Equal(t, NotEquivalent, report.Status)
	require.NotNil(t, report.Mismatch)
	assert.Equal(t, []string{"x"}, report.Mismatch.Left)
	assert.Equal(t, []string{"t", "x"}, report.Mismatch.Right)
	assert.Empty(t, fake.Calls())
}

func TestEquivalenceSyntaxErrorNamesProgram(t *testing.T) {
	_, err := bounded().Equivalence(context.Background(), "x := 1;", "x := ;")
	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, err.Error(), "second program")
}
