// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	perrors "progcheck/internal/errors"
	"progcheck/internal/ir"
	"progcheck/internal/smt"
	"progcheck/internal/verify"
)

const PROMPT = ">> "

const help = `Lines that do not start with ':' are appended to the program.
  :show          print the program
  :undo          drop the last line
  :reset         clear the program
  :load FILE     append the contents of FILE
  :ast           print the parsed program
  :ssa           print the SSA form
  :opt           print the optimized SSA form
  :cfg           print the control flow graph (DOT)
  :smt           print the verification script
  :verify        check every assertion
  :quit          leave
`

// REPL accumulates program text and runs the pipeline over it on demand.
type REPL struct {
	checker *verify.Checker
	out     io.Writer
	lines   []string
}

func New(checker *verify.Checker, out io.Writer) *REPL {
	return &REPL{checker: checker, out: out}
}

// Source returns the accumulated program.
func (r *REPL) Source() string {
	return strings.Join(r.lines, "\n")
}

// Start reads lines from in until EOF or :quit.
func Start(ctx context.Context, in io.Reader, out io.Writer, checker *verify.Checker) error {
	r := New(checker, out)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if !r.Eval(ctx, scanner.Text()) {
			return nil
		}
	}
}

// Eval handles one input line. It returns false once the session should end.
func (r *REPL) Eval(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		if trimmed != "" {
			r.lines = append(r.lines, line)
		}
		return true
	}

	command, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "q", "quit", "exit":
		return false
	case "help", "h":
		fmt.Fprint(r.out, help)
	case "show":
		for i, l := range r.lines {
			fmt.Fprintf(r.out, "%3d  %s\n", i+1, l)
		}
	case "undo":
		if len(r.lines) > 0 {
			r.lines = r.lines[:len(r.lines)-1]
		}
	case "reset":
		r.lines = nil
	case "load":
		r.load(arg)
	case "ast", "ssa", "opt", "cfg", "smt":
		r.inspect(command)
	case "verify":
		r.verify(ctx)
	default:
		fmt.Fprintf(r.out, "unknown command :%s, try :help\n", command)
	}
	return true
}

func (r *REPL) load(path string) {
	if path == "" {
		fmt.Fprintln(r.out, "usage: :load FILE")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.printError(err)
		return
	}
	for _, l := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			r.lines = append(r.lines, l)
		}
	}
}

func (r *REPL) inspect(command string) {
	analysis, err := r.checker.Analyze(r.Source())
	if err != nil {
		r.printError(err)
		return
	}

	switch command {
	case "ast":
		fmt.Fprint(r.out, analysis.Program.String())
	case "ssa":
		fmt.Fprint(r.out, ir.Print(analysis.SSA))
	case "opt":
		optimized, stats := analysis.Optimized, analysis.Stats
		if optimized == nil {
			optimized, stats = ir.OptimizeProgram(analysis.SSA)
		}
		fmt.Fprint(r.out, ir.Print(optimized))
		fmt.Fprintf(r.out, "%d propagated, %d folded, %d removed\n", stats.Propagated, stats.Folded, stats.Removed)
	case "cfg":
		if err := analysis.CFG.WriteDot(r.out); err != nil {
			r.printError(err)
		}
	case "smt":
		script, err := smt.Encode(analysis.Checked())
		if err != nil {
			r.printError(err)
			return
		}
		fmt.Fprint(r.out, script.String())
	}
}

func (r *REPL) verify(ctx context.Context) {
	report, err := r.checker.Verify(ctx, r.Source())
	if err != nil {
		r.printError(err)
		return
	}

	status := report.Status.String()
	switch report.Status {
	case verify.Verified:
		status = color.GreenString(status)
	case verify.Violated:
		status = color.RedString(status)
	default:
		status = color.YellowString(status)
	}
	fmt.Fprintln(r.out, status+strings.TrimPrefix(report.String(), report.Status.String()))
}

func (r *REPL) printError(err error) {
	fmt.Fprintln(r.out, perrors.FromError(err).Error())
}
