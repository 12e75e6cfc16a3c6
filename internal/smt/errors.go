package smt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPhi is returned for phi nodes that do not have exactly two
// operands. Only two-way merges can be encoded.
var ErrUnsupportedPhi = errors.New("phi nodes must have exactly two operands")

// StructuralMismatchError means two programs do not assign the same set of
// variables, so they cannot be equivalent and no solver call is needed.
type StructuralMismatchError struct {
	Left  []string
	Right []string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("programs assign different variables: {%s} vs {%s}",
		strings.Join(e.Left, ", "), strings.Join(e.Right, ", "))
}
