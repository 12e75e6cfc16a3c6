package errors

// Error codes for the progcheck analyzer
// These codes are used in error messages, diagnostics and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Parser errors
// E0700-E0799: Analysis errors
// W0001-W0099: Warnings
//
// Verification outcomes that are findings about the analyzed program
// (a violated assertion, two programs that differ) use the analysis range
// like the errors raised while building the analysis.

const (
	// Parser errors (reserved range: E0100-E0199)

	// E0100: Malformed statement or unterminated block
	ErrorSyntax = "E0100"

	// Analysis errors (reserved range: E0700-E0799)

	// E0700: Statement kind the SSA builder has no rule for
	ErrorUnknownConstruct = "E0700"

	// E0701: Division or modulo by zero, or integer overflow
	ErrorEvaluation = "E0701"

	// E0702: Programs compared for equivalence assign different variables
	ErrorStructuralMismatch = "E0702"

	// E0703: Solver failed, timed out or broke its result contract
	ErrorSolver = "E0703"

	// E0704: Some input violates an assertion
	ErrorAssertionViolated = "E0704"

	// E0705: Programs end with different outputs for some input
	ErrorNotEquivalent = "E0705"

	// Warning codes

	// W0001: Solver could not decide the query
	WarningInconclusive = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Statement is malformed or a block is not terminated"
	case ErrorUnknownConstruct:
		return "Statement kind is not supported by the SSA builder"
	case ErrorEvaluation:
		return "Integer evaluation failed"
	case ErrorStructuralMismatch:
		return "Programs assign different sets of variables"
	case ErrorSolver:
		return "Constraint solver failed"
	case ErrorAssertionViolated:
		return "Assertion does not hold for some input"
	case ErrorNotEquivalent:
		return "Programs compute different outputs for some input"
	case WarningInconclusive:
		return "Solver could not decide the query"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return code != "" && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0700" && code < "E0800":
		return "Analysis"
	case IsWarning(code):
		return "Warning"
	default:
		return "Unknown"
	}
}
