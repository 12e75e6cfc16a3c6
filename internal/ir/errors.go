package ir

import (
	"fmt"

	"progcheck/internal/ast"
)

// UnknownConstructError reports an AST variant the builder has no rule for.
// It indicates a bug, never bad input.
type UnknownConstructError struct {
	Construct string
	Line      int
}

func (e *UnknownConstructError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unknown construct %s at line %d", e.Construct, e.Line)
	}
	return fmt.Sprintf("unknown construct %s", e.Construct)
}

func unknownConstruct(node any, line int) error {
	return &UnknownConstructError{Construct: fmt.Sprintf("%T", node), Line: line}
}

// EvaluationError is returned by the integer evaluator for division or
// modulo by zero and for results that do not fit in an int64.
type EvaluationError struct {
	Op     ast.Operator
	Left   int64
	Right  int64
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %d %s %d: %s", e.Left, e.Op, e.Right, e.Reason)
}

type UndefinedNameError struct {
	Name  Name
	Index int
}

func (e *UndefinedNameError) Error() string {
	return fmt.Sprintf("instruction %d reads %s before it is defined", e.Index, e.Name)
}

type RedefinitionError struct {
	Name  Name
	Index int
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("instruction %d redefines %s", e.Index, e.Name)
}
