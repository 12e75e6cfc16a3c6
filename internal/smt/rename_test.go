package smt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"progcheck/internal/ir"
)

func TestRenameTouchesEveryName(t *testing.T) {
	instrs := ssa(t, "s := 0; if (a[k] > s) { s := a[k]; } assert(s >= 0);")
	renamed := Rename(instrs, "'")

	for i := range instrs {
		for _, name := range ir.Reads(renamed[i]) {
			assert.Regexp(t, `'$`, name.Base)
		}
		if name, ok := ir.Writes(renamed[i]); ok {
			assert.Regexp(t, `'$`, name.Base)
		}
	}
	assert.Equal(t, "s'_3 := phi(s'_2, s'_1) if a'_0[k'_0] > s'_1", renamed[2].String())

	// the input stream is not modified
	assert.Equal(t, "s_3 := phi(s_2, s_1) if a_0[k_0] > s_1", instrs[2].String())
}

func TestRenamerKeepInputs(t *testing.T) {
	r := Renamer{Suffix: SecondSuffix, KeepInputs: true}

	assert.Equal(t, ir.Name{Base: "n", Version: 0}, r.Name(ir.Name{Base: "n", Version: 0}))
	assert.Equal(t, ir.Name{Base: "n.b", Version: 2}, r.Name(ir.Name{Base: "n", Version: 2}))

	renamed := r.Instructions(ssa(t, "y := a[n] + y;"))
	assert.Equal(t, "y.b_1 := a_0[n_0] + y_0", renamed[0].String())
}
