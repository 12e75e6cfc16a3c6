package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for SSA programs
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new SSA printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the listing of an SSA program followed by its final
// versions.
func Print(program *Program) string {
	p := NewPrinter()
	p.printProgram(program)
	return p.output.String()
}

// PrintInstructions returns one instruction per line.
func PrintInstructions(instrs []Instruction) string {
	p := NewPrinter()
	for _, inst := range instrs {
		p.writeLine("%s", inst)
	}
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *Program) {
	p.writeLine("SSA (%d instructions)", len(program.Instructions))
	p.indent++
	for i, inst := range program.Instructions {
		p.writeLine("%3d  %s", i, inst)
	}
	p.indent--

	if len(program.FinalVersions) == 0 {
		return
	}
	p.writeLine("")
	p.writeLine("FINAL VERSIONS:")
	p.indent++
	for _, name := range sortedKeys(program.FinalVersions) {
		p.writeLine("%-12s %s", name, program.Final(name))
	}
	p.indent--
}
