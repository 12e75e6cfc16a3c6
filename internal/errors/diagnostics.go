package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"progcheck/internal/ast"
	"progcheck/internal/ir"
	"progcheck/internal/parser"
	"progcheck/internal/smt"
	"progcheck/internal/solver"
	"progcheck/internal/verify"
)

// DiagnosticBuilder provides a fluent interface for creating diagnostics with suggestions
type DiagnosticBuilder struct {
	err CompilerError
}

// NewDiagnostic creates a new error builder
func NewDiagnostic(code, message string, line int) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: ast.Position{Line: line},
		},
	}
}

// NewWarning creates a new warning builder
func NewWarning(code, message string, line int) *DiagnosticBuilder {
	b := NewDiagnostic(code, message, line)
	b.err.Level = Warning
	return b
}

// WithSpan sets the column and length of the marked region
func (b *DiagnosticBuilder) WithSpan(column, length int) *DiagnosticBuilder {
	b.err.Column = column
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *DiagnosticBuilder) WithReplacement(message, replacement string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
	})
	return b
}

// WithNote adds a note to the error
func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed diagnostic
func (b *DiagnosticBuilder) Build() CompilerError {
	return b.err
}

// Syntax creates an error for a statement the parser rejected
func Syntax(err *parser.SyntaxError) CompilerError {
	builder := NewDiagnostic(ErrorSyntax, err.Reason, err.Line)
	switch {
	case strings.Contains(err.Reason, "missing '}'"):
		builder = builder.WithSuggestion("close the block with '}'")
	case strings.HasPrefix(err.Reason, "malformed") && strings.Contains(err.Reason, "header"):
		builder = builder.WithSuggestion("check that the condition is wrapped in '(' and ')'")
	}
	return builder.WithHelp("statements are assignments 'x := e;', 'assert(c);', 'if', 'while' and 'for'").Build()
}

// UnknownConstruct creates an error for a statement kind the SSA builder cannot lower
func UnknownConstruct(err *ir.UnknownConstructError) CompilerError {
	return NewDiagnostic(ErrorUnknownConstruct, err.Error(), err.Line).
		WithNote("this is an internal error, the parser produced a statement the analyzer does not know").
		Build()
}

// Evaluation creates an error for arithmetic that has no integer result
func Evaluation(err *ir.EvaluationError, line int) CompilerError {
	builder := NewDiagnostic(ErrorEvaluation, err.Error(), line)
	if err.Reason == "integer overflow" {
		builder = builder.WithNote("values are signed 64-bit integers")
	}
	return builder.Build()
}

// StructuralMismatch creates an error for programs that assign different variables
func StructuralMismatch(err *smt.StructuralMismatchError) CompilerError {
	builder := NewDiagnostic(ErrorStructuralMismatch, "programs assign different variables", 0)
	if only := missing(err.Left, err.Right); len(only) > 0 {
		builder = builder.WithNote(fmt.Sprintf("only the first program assigns: %s", strings.Join(only, ", ")))
	}
	if only := missing(err.Right, err.Left); len(only) > 0 {
		builder = builder.WithNote(fmt.Sprintf("only the second program assigns: %s", strings.Join(only, ", ")))
	}
	return builder.Build()
}

// Solver creates an error for a failing solver
func Solver(err *solver.Error) CompilerError {
	return NewDiagnostic(ErrorSolver, err.Error(), 0).
		WithHelp("the result says nothing about the program; check the solver configuration in .progcheck.yaml").
		Build()
}

// AssertionViolated reports an assertion that fails for the given input
func AssertionViolated(line int, assertion, counterexample string) CompilerError {
	builder := NewDiagnostic(ErrorAssertionViolated, fmt.Sprintf("assertion may fail: %s", assertion), line)
	if counterexample != "" {
		builder = builder.WithNote(fmt.Sprintf("counterexample: %s", counterexample))
	}
	return builder.Build()
}

// NotEquivalent reports programs whose outputs differ for the given input
func NotEquivalent(outputs []string, counterexample string) CompilerError {
	builder := NewDiagnostic(ErrorNotEquivalent, "programs are not equivalent", 0)
	if len(outputs) > 0 {
		builder = builder.WithNote(fmt.Sprintf("outputs that differ: %s", strings.Join(outputs, ", ")))
	}
	if counterexample != "" {
		builder = builder.WithNote(fmt.Sprintf("counterexample: %s", counterexample))
	}
	return builder.Build()
}

// Inconclusive creates a warning for a query the solver could not decide
func Inconclusive(line int, reason string) CompilerError {
	return NewWarning(WarningInconclusive, fmt.Sprintf("could not decide: %s", reason), line).
		WithSuggestion("use an external solver or raise solver.bound").
		Build()
}

// FromError classifies err and builds the matching diagnostic. Unclassified
// errors become a diagnostic without a code.
func FromError(err error) CompilerError {
	var (
		syntaxErr   *parser.SyntaxError
		unknownErr  *ir.UnknownConstructError
		evalErr     *ir.EvaluationError
		mismatchErr *smt.StructuralMismatchError
		solverErr   *solver.Error
	)
	switch {
	case stderrors.As(err, &syntaxErr):
		return Syntax(syntaxErr)
	case stderrors.As(err, &unknownErr):
		return UnknownConstruct(unknownErr)
	case stderrors.As(err, &evalErr):
		return Evaluation(evalErr, 0)
	case stderrors.As(err, &mismatchErr):
		return StructuralMismatch(mismatchErr)
	case stderrors.As(err, &solverErr):
		return Solver(solverErr)
	}
	return CompilerError{Level: Error, Message: err.Error()}
}

// FromReport builds the diagnostics for a finished check. Verified and
// equivalent reports produce none.
func FromReport(report *verify.Report) []CompilerError {
	switch report.Status {
	case verify.Violated:
		if len(report.Violations) == 0 {
			return []CompilerError{AssertionViolated(0, "some assertion", report.Witness())}
		}
		diags := make([]CompilerError, 0, len(report.Violations))
		for _, v := range report.Violations {
			diags = append(diags, AssertionViolated(v.Line, v.Assertion, report.Witness()))
		}
		return diags
	case verify.NotEquivalent:
		if report.Mismatch != nil {
			return []CompilerError{StructuralMismatch(report.Mismatch)}
		}
		outputs := make([]string, 0, len(report.Differences))
		for _, d := range report.Differences {
			outputs = append(outputs, d.String())
		}
		return []CompilerError{NotEquivalent(outputs, report.Witness())}
	case verify.Inconclusive:
		return []CompilerError{Inconclusive(0, report.Reason())}
	}
	return nil
}

// missing returns the names in a that are not in b.
func missing(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, name := range b {
		seen[name] = true
	}
	var out []string
	for _, name := range a {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}
