package lsp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"progcheck/internal/config"
	"progcheck/internal/lsp"
	"progcheck/internal/solver"
	"progcheck/internal/verify"
)

const uri = "file:///tmp/example.prog"

func session() *verify.Session {
	return verify.NewSession(verify.NewChecker(solver.Bounded{Bound: 2}, verify.Options{Optimize: true}))
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		severity protocol.DiagnosticSeverity
		line     uint32
		code     string
		message  string
	}{
		{
			name:     "syntax error",
			source:   "x := 1;\nif (x < 5 { y := 1; }",
			severity: protocol.DiagnosticSeverityError,
			line:     1,
			code:     "E0100",
			message:  "malformed if header",
		},
		{
			name:     "violated assertion",
			source:   "y := x + 1;\n  assert(y != 0);",
			severity: protocol.DiagnosticSeverityWarning,
			line:     1,
			code:     "E0704",
			message:  "counterexample: x_0 = -1",
		},
		{
			name:     "undecided",
			source:   "y := x * x;\nassert(y >= 0);",
			severity: protocol.DiagnosticSeverityInformation,
			line:     1,
			code:     "W0001",
			message:  "no model within bound 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics, err := lsp.Diagnose(context.Background(), session(), tt.source)
			require.NoError(t, err)
			require.Len(t, diagnostics, 1)

			d := diagnostics[0]
			assert.Equal(t, tt.severity, *d.Severity)
			assert.Equal(t, tt.line, d.Range.Start.Line)
			assert.Equal(t, tt.code, d.Code.Value)
			assert.Contains(t, d.Message, tt.message)
			assert.Equal(t, "progcheck", *d.Source)
		})
	}
}

func TestDiagnoseRangeCoversStatement(t *testing.T) {
	diagnostics, err := lsp.Diagnose(context.Background(), session(), "y := x + 1;\n  assert(y != 0);  ")
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 17},
	}, diagnostics[0].Range)
}

func TestDiagnoseVerifiedProgram(t *testing.T) {
	diagnostics, err := lsp.Diagnose(context.Background(), session(), "x := 3;\ny := x + 1;\nassert(y > 0);")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
}

func TestDiagnoseBusySession(t *testing.T) {
	fake := &solver.Fake{Block: make(chan struct{})}
	s := verify.NewSession(verify.NewChecker(fake, verify.Options{}))

	go func() { _, _ = s.Verify(context.Background(), "assert(x > 0);") }()
	require.Eventually(t, func() bool { return s.State() == verify.Pending }, time.Second, time.Millisecond)

	_, err := lsp.Diagnose(context.Background(), s, "assert(x > 0);")
	assert.ErrorIs(t, err, verify.ErrBusy)
	close(fake.Block)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	handler := lsp.NewHandler(config.Default())
	published := make(chan *protocol.PublishDiagnosticsParams, 4)
	ctx := &glsp.Context{Notify: func(method string, params any) {
		if method == protocol.ServerTextDocumentPublishDiagnostics {
			published <- params.(*protocol.PublishDiagnosticsParams)
		}
	}}

	err := handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "x := 3;\nassert(x > 5);"},
	})
	require.NoError(t, err)

	select {
	case params := <-published:
		assert.Equal(t, uri, params.URI)
		require.Len(t, params.Diagnostics, 1)
		assert.Equal(t, uint32(1), params.Diagnostics[0].Range.Start.Line)
		assert.Contains(t, params.Diagnostics[0].Message, "assert(x > 5)")
	case <-time.After(5 * time.Second):
		t.Fatal("no diagnostics published")
	}

	err = handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x := 3;\nassert(x < 5);"}},
	})
	require.NoError(t, err)

	select {
	case params := <-published:
		assert.Empty(t, params.Diagnostics)
	case <-time.After(5 * time.Second):
		t.Fatal("no diagnostics published after change")
	}
	require.NoError(t, handler.Shutdown(ctx))
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := lsp.NewHandler(config.Default())
	ctx := &glsp.Context{Notify: func(string, any) {}}
	require.NoError(t, handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "x := a[0]; // c\nassert(x > 1);"},
	}))

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	decoded := decodeSemanticTokens(t, tokens.Data)
	assert.Equal(t, []decodedToken{
		{0, 0, 1, "variable", []string{"declaration"}},
		{0, 2, 2, "operator", nil},
		{0, 5, 1, "variable", []string{"readonly"}},
		{0, 7, 1, "number", nil},
		{0, 11, 4, "comment", nil},
		{1, 0, 6, "keyword", nil},
		{1, 7, 1, "variable", nil},
		{1, 9, 1, "operator", nil},
		{1, 11, 1, "number", nil},
	}, decoded)
	require.NoError(t, handler.Shutdown(ctx))
}

func TestTextDocumentCompletion(t *testing.T) {
	handler := lsp.NewHandler(config.Default())
	ctx := &glsp.Context{Notify: func(string, any) {}}
	require.NoError(t, handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "total := 0;\nfor (i := 0; i < n; i := i + 1) { total := total + i; }"},
	}))

	result, err := handler.TextDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		},
	})
	require.NoError(t, err)

	var labels []string
	for _, item := range result.(*protocol.CompletionList).Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"if", "else", "while", "for", "assert", "i", "n", "total"}, labels)

	require.NoError(t, handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Empty(t, tokens.Data)
	require.NoError(t, handler.Shutdown(ctx))
}

type decodedToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(t *testing.T, raw []uint32) []decodedToken {
	t.Helper()
	require.Zero(t, len(raw)%5, "token data must come in groups of five")

	var tokens []decodedToken
	var line, start uint32
	for i := 0; i < len(raw); i += 5 {
		deltaLine, deltaStart := raw[i], raw[i+1]
		if deltaLine == 0 {
			start += deltaStart
		} else {
			line += deltaLine
			start = deltaStart
		}

		var modifiers []string
		for bit, name := range lsp.SemanticTokenModifiers {
			if raw[i+4]&(1<<bit) != 0 {
				modifiers = append(modifiers, name)
			}
		}
		tokens = append(tokens, decodedToken{
			Line:      line,
			StartChar: start,
			Length:    raw[i+2],
			Type:      lsp.SemanticTokenTypes[raw[i+3]],
			Modifiers: modifiers,
		})
	}
	return tokens
}
