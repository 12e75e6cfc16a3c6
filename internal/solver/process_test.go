package solver

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progcheck/internal/smt"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Result
	}{
		{
			name:   "unsat followed by a get-model error",
			output: "unsat\n(error \"line 6 column 10: model is not available\")\n",
			want:   Result{Verdict: Unsat},
		},
		{
			name:   "unknown",
			output: "unknown\n",
			want:   Result{Verdict: Unknown, Reason: "solver answered unknown"},
		},
		{
			name: "bare model",
			output: `sat
(
  (define-fun x_0 () Int
    (- 1))
  (define-fun y_1 () Int
    0)
)
`,
			want: Result{Verdict: Sat, Model: Model{"x_0": -1, "y_1": 0}},
		},
		{
			name:   "model keyword and quoted symbols",
			output: "sat\n(model (define-fun |x_0.b| () Int 5))\n",
			want:   Result{Verdict: Sat, Model: Model{"x_0.b": 5}},
		},
		{
			name: "array functions are skipped",
			output: `sat
((define-fun i_0 () Int 1)
 (define-fun a_0_arr ((x!0 Int)) Int (ite (= x!0 1) (- 4) 0)))
`,
			want: Result{Verdict: Sat, Model: Model{"i_0": 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutput(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOutputErrors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty", ""},
		{"no verdict", "hello\n"},
		{"unbalanced", "sat\n((define-fun x () Int 1)\n"},
		{"sat without model", "sat\n"},
		{"sat with model error", "sat\n(error \"model generation disabled\")\n"},
		{"non-integer value", "sat\n((define-fun x () Real 1.5))\n"},
		{"not a definition", "sat\n((declare-fun x () Int))\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOutput(tt.output)
			assert.Error(t, err)
		})
	}

	_, err := ParseOutput("sat\n")
	assert.ErrorIs(t, err, ErrMissingModel)
}

func TestProcessMissingCommand(t *testing.T) {
	p := Process{Command: "progcheck-no-such-solver"}
	_, err := p.Solve(context.Background(), &smt.Script{})

	var solverErr *Error
	require.ErrorAs(t, err, &solverErr)
	assert.Equal(t, "cannot start", solverErr.Reason)
}

func shell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no shell available")
	}
	return path
}

func TestProcessReadsVerdict(t *testing.T) {
	p := Process{Command: shell(t), Args: []string{"-c", "cat >/dev/null; echo unsat; echo '(error \"no model\")'; exit 1"}}

	result, err := p.Solve(context.Background(), &smt.Script{Assertions: []string{"false"}})
	require.NoError(t, err)
	assert.Equal(t, Unsat, result.Verdict)
}

func TestProcessMalformedOutput(t *testing.T) {
	p := Process{Command: shell(t), Args: []string{"-c", "cat >/dev/null; echo boom >&2; exit 2"}}

	_, err := p.Solve(context.Background(), &smt.Script{})
	var solverErr *Error
	require.ErrorAs(t, err, &solverErr)
	assert.Equal(t, "malformed output", solverErr.Reason)
	assert.Contains(t, err.Error(), "boom")
}

func TestProcessTimeout(t *testing.T) {
	p := Process{Command: shell(t), Args: []string{"-c", "exec sleep 5"}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Solve(ctx, &smt.Script{})
	var solverErr *Error
	require.ErrorAs(t, err, &solverErr)
	assert.Equal(t, "canceled", solverErr.Reason)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
