package lsp

import (
	"context"
	"errors"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	perrors "progcheck/internal/errors"
	"progcheck/internal/verify"
)

const diagnosticSource = "progcheck"

// Diagnose analyzes source and converts the outcome into diagnostics:
// rejected input is an error, a violated assertion a warning at its line
// and an undecided query information. It returns verify.ErrBusy while the
// session is still working on an earlier version.
func Diagnose(ctx context.Context, session *verify.Session, source string) ([]protocol.Diagnostic, error) {
	lines := splitLines(source)

	report, err := session.Verify(ctx, source)
	if errors.Is(err, verify.ErrBusy) {
		return nil, err
	}
	if err != nil {
		return []protocol.Diagnostic{convert(perrors.FromError(err), lines, protocol.DiagnosticSeverityError)}, nil
	}

	diagnostics := []protocol.Diagnostic{}
	for _, diag := range perrors.FromReport(report) {
		severity := protocol.DiagnosticSeverityWarning
		if report.Status == verify.Inconclusive {
			severity = protocol.DiagnosticSeverityInformation
			diag.Position.Line = firstAssertLine(lines)
		}
		diagnostics = append(diagnostics, convert(diag, lines, severity))
	}
	return diagnostics, nil
}

// convert places a diagnostic on its whole source line. Diagnostics without
// a line go to the top of the document.
func convert(diag perrors.CompilerError, lines []string, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	message := diag.Message
	for _, note := range diag.Notes {
		message += "\n" + note
	}

	var start, end protocol.Position
	if line := diag.Position.Line; line > 0 && line <= len(lines) {
		text := lines[line-1]
		trimmed := strings.TrimSpace(text)
		start = protocol.Position{Line: uint32(line - 1), Character: uint32(strings.Index(text, trimmed))}
		end = protocol.Position{Line: uint32(line - 1), Character: uint32(len(strings.TrimRight(text, " \t\r")))}
	}

	d := protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   ptrString(diagnosticSource),
		Message:  message,
	}
	if diag.Code != "" {
		d.Code = &protocol.IntegerOrString{Value: diag.Code}
	}
	return d
}

func firstAssertLine(lines []string) int {
	for i, line := range lines {
		if strings.Contains(line, "assert") {
			return i + 1
		}
	}
	return 0
}

func splitLines(source string) []string {
	return strings.Split(source, "\n")
}

func ptrString(s string) *string {
	return &s
}
