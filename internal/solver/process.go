package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"progcheck/grammar"
	"progcheck/internal/smt"
)

// waitDelay bounds how long a killed solver may hold its output open.
const waitDelay = time.Second

// Process runs an SMT-LIB2 solver that reads a script on standard input,
// such as "z3 -in".
type Process struct {
	Command string
	Args    []string
}

func (p Process) Solve(ctx context.Context, script *smt.Script) (Result, error) {
	log := commonlog.GetLogger("progcheck.solver")

	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.Stdin = strings.NewReader(script.String())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	log.Debugf("running %s %s", p.Command, strings.Join(p.Args, " "))
	runErr := cmd.Run()
	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Solver: p.Command, Reason: "canceled", Err: err}
	}

	var execErr *exec.Error
	if errors.As(runErr, &execErr) {
		return Result{}, &Error{Solver: p.Command, Reason: "cannot start", Err: runErr}
	}

	// Some solvers exit non-zero after answering, e.g. when (get-model)
	// follows an unsat answer, so the output decides.
	result, err := ParseOutput(stdout.String())
	if err != nil {
		if runErr != nil {
			err = fmt.Errorf("%w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return Result{}, &Error{Solver: p.Command, Reason: "malformed output", Err: err}
	}
	return result, nil
}

// ParseOutput reads the answer to (check-sat) (get-model): a verdict symbol
// followed, for sat, by the model. Both the bare list of define-fun entries
// and the older (model ...) form are accepted.
func ParseOutput(output string) (Result, error) {
	doc, err := grammar.ParseString("output", output)
	if err != nil {
		return Result{}, err
	}
	if len(doc.Exprs) == 0 {
		return Result{}, errors.New("no verdict")
	}

	var result Result
	switch doc.Exprs[0].SymbolName() {
	case "sat":
		result.Verdict = Sat
	case "unsat":
		return Result{Verdict: Unsat}, nil
	case "unknown":
		return Result{Verdict: Unknown, Reason: "solver answered unknown"}, nil
	default:
		return Result{}, fmt.Errorf("expected a verdict, got %s", doc.Exprs[0])
	}

	if len(doc.Exprs) < 2 {
		return Result{}, ErrMissingModel
	}
	block := doc.Exprs[1]
	if block.Head() == "error" {
		return Result{}, fmt.Errorf("solver reported %s", block)
	}
	model, err := parseModel(block)
	if err != nil {
		return Result{}, err
	}
	result.Model = model
	return result, nil
}

func parseModel(block *grammar.SExpr) (Model, error) {
	if !block.IsList() {
		return nil, fmt.Errorf("expected a model, got %s", block)
	}
	entries := block.Items()
	if block.Head() == "model" {
		entries = entries[1:]
	}

	model := Model{}
	for _, entry := range entries {
		items := entry.Items()
		if entry.Head() != "define-fun" || len(items) != 5 {
			return nil, fmt.Errorf("%s: malformed model entry %s", entry.Pos, entry)
		}
		if len(items[2].Items()) > 0 {
			// Array functions carry no counterexample value of their own.
			continue
		}
		v, ok := items[4].Int()
		if !ok {
			return nil, fmt.Errorf("%s: non-integer value %s", entry.Pos, items[4])
		}
		model[unquote(items[1].SymbolName())] = v
	}
	return model, nil
}
