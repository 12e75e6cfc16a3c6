package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	program := buildSource(t, "x := 3; y := x + 1; assert(y > 0);", BuildOptions{})
	output := Print(program)

	expected := []string{
		"SSA (3 instructions)",
		"    0  x_1 := 3",
		"    1  y_1 := x_1 + 1",
		"    2  assert y_1 > 0",
		"",
		"FINAL VERSIONS:",
		"  x            x_1",
		"  y            y_1",
	}
	assert.Equal(t, strings.Join(expected, "\n")+"\n", output)
}

func TestPrintInstructions(t *testing.T) {
	instrs := []Instruction{
		&Phi{Result: Name{"x", 2}, Operands: []Name{{"x", 0}, {"x", 1}}},
		&Assert{Cond: &Unary{Op: "!", Operand: &Binary{Op: "==", Left: &Ref{Name: Name{"x", 2}}, Right: &Const{Value: -1}}}},
	}
	assert.Equal(t, "x_2 := phi(x_0, x_1)\nassert !(x_2 == -1)\n", PrintInstructions(instrs))
}
