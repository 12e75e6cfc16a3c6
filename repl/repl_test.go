package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progcheck/internal/solver"
	"progcheck/internal/verify"
)

func newREPL(t *testing.T, optimize bool) (*REPL, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	checker := verify.NewChecker(solver.Bounded{Bound: 4}, verify.Options{Optimize: optimize})
	return New(checker, &out), &out
}

func feed(r *REPL, lines ...string) {
	for _, line := range lines {
		r.Eval(context.Background(), line)
	}
}

func TestEditing(t *testing.T) {
	r, out := newREPL(t, false)

	feed(r, "x := 1;", "", "y := 2;", "z := 3;", ":undo")
	assert.Equal(t, "x := 1;\ny := 2;", r.Source())

	feed(r, ":show")
	assert.Equal(t, "  1  x := 1;\n  2  y := 2;\n", out.String())

	feed(r, ":reset")
	assert.Empty(t, r.Source())
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"ast", ":ast", []string{"x := 3;", "y := x + 1;"}},
		{"ssa", ":ssa", []string{"SSA (3 instructions)", "y_1 := x_1 + 1"}},
		{"opt", ":opt", []string{"y_1 := 4", "1 propagated, 1 folded, 1 removed"}},
		{"cfg", ":cfg", []string{"digraph cfg {", "0 -> 1;"}},
		{"smt", ":smt", []string{"(set-logic QF_NIA)", "(check-sat)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out := newREPL(t, false)
			feed(r, "x := 3;", "y := x + 1;", "assert(y > 0);", tt.command)
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	r, out := newREPL(t, true)
	feed(r, "x := 3;", "assert(x > 5);", ":verify")
	assert.Contains(t, out.String(), "violated")
	assert.Contains(t, out.String(), "line 2: assert(x > 5)")

	out.Reset()
	feed(r, ":undo", "assert(x < 5);", ":verify")
	assert.Contains(t, out.String(), "verified")
}

func TestSyntaxErrorIsReported(t *testing.T) {
	r, out := newREPL(t, false)
	feed(r, "if (x < 5 {", "y := 1;", "}", ":ssa")
	assert.Contains(t, out.String(), "error[E0100]: line 1:")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte("a := 1;\n\nb := a;\n"), 0o644))

	r, out := newREPL(t, false)
	feed(r, ":load "+path)
	assert.Equal(t, "a := 1;\nb := a;", r.Source())

	feed(r, ":load "+filepath.Join(t.TempDir(), "missing.txt"))
	assert.Contains(t, out.String(), "error: ")

	out.Reset()
	feed(r, ":load")
	assert.Equal(t, "usage: :load FILE\n", out.String())
}

func TestUnknownCommand(t *testing.T) {
	r, out := newREPL(t, false)
	assert.True(t, r.Eval(context.Background(), ":frobnicate"))
	assert.Equal(t, "unknown command :frobnicate, try :help\n", out.String())
}

func TestStartStopsAtQuit(t *testing.T) {
	var out bytes.Buffer
	checker := verify.NewChecker(solver.Bounded{}, verify.Options{})
	in := strings.NewReader("x := 1;\n:quit\n:show\n")

	require.NoError(t, Start(context.Background(), in, &out, checker))
	assert.Equal(t, strings.Repeat(PROMPT, 2), out.String())
}

func TestStartStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	checker := verify.NewChecker(solver.Bounded{}, verify.Options{})

	require.NoError(t, Start(context.Background(), strings.NewReader("x := 1;\n"), &out, checker))
	assert.Equal(t, PROMPT+PROMPT+"\n", out.String())
}
