package ir

// The optimizer is a single forward pass: constants come from literal
// assignments in the input only, so a value produced by folding is not
// propagated any further. Running to a fixed point would expose more
// constants but changes the output, so the pipeline runs each pass once.

import (
	"github.com/tliron/commonlog"
)

// OptimizationPass represents a single optimization transformation
type OptimizationPass interface {
	Name() string
	Apply(program *Program) bool // Returns true if changes were made
	Description() string
}

// OptimizationPipeline manages the sequence of optimization passes
type OptimizationPipeline struct {
	passes []OptimizationPass
	log    commonlog.Logger
}

// NewOptimizationPipeline creates the constant propagation + dead code
// elimination pipeline.
func NewOptimizationPipeline() *OptimizationPipeline {
	pipeline := &OptimizationPipeline{log: commonlog.GetLogger("progcheck.ir")}

	// Use counts are taken on the rewritten instructions, so propagation
	// must run first.
	pipeline.AddPass(&ConstantPropagation{})
	pipeline.AddPass(&DeadCodeElimination{})

	return pipeline
}

// AddPass adds an optimization pass to the pipeline
func (p *OptimizationPipeline) AddPass(pass OptimizationPass) {
	p.passes = append(p.passes, pass)
}

// Run executes every pass once, in order.
func (p *OptimizationPipeline) Run(program *Program) {
	p.log.Debugf("running %d optimization passes", len(p.passes))

	for _, pass := range p.passes {
		p.log.Debugf("%s: %s", pass.Name(), pass.Description())
		changed := pass.Apply(program)
		p.log.Debugf("%s: changed=%t", pass.Name(), changed)
	}
}

// OptimizeStats summarizes what one optimizer run did.
type OptimizeStats struct {
	Propagated int // references replaced by a constant
	Folded     int // operators evaluated to a constant
	Suppressed int // folds skipped because evaluation failed
	Removed    int // dead assignments dropped
}

// Optimize returns the optimized form of instrs. The input is not modified.
func Optimize(instrs []Instruction) []Instruction {
	program := &Program{Instructions: instrs}
	optimized, _ := OptimizeProgram(program)
	return optimized.Instructions
}

// OptimizeProgram runs the default pipeline on a copy of program.
func OptimizeProgram(program *Program) (*Program, OptimizeStats) {
	out := &Program{
		Instructions:  program.Instructions,
		FinalVersions: program.FinalVersions,
	}
	pipeline := NewOptimizationPipeline()
	pipeline.Run(out)

	var stats OptimizeStats
	for _, pass := range pipeline.passes {
		switch p := pass.(type) {
		case *ConstantPropagation:
			stats.Propagated += p.Propagated
			stats.Folded += p.Folded
			stats.Suppressed += p.Suppressed
		case *DeadCodeElimination:
			stats.Removed += p.Removed
		}
	}
	return out, stats
}

// ConstantPropagation replaces references to names assigned a literal with
// that literal and folds operators whose operands are all literals.
type ConstantPropagation struct {
	Propagated int
	Folded     int
	Suppressed int
}

func (cp *ConstantPropagation) Name() string {
	return "Constant Propagation"
}

func (cp *ConstantPropagation) Description() string {
	return "Replaces references to literal-valued names and folds constant operators"
}

func (cp *ConstantPropagation) Apply(program *Program) bool {
	constants := make(map[Name]int64)
	for _, inst := range program.Instructions {
		if assign, ok := inst.(*Assign); ok {
			if c, ok := assign.Value.(*Const); ok {
				constants[assign.Target] = c.Value
			}
		}
	}

	before := cp.Propagated + cp.Folded
	rewritten := make([]Instruction, len(program.Instructions))
	for i, inst := range program.Instructions {
		switch x := inst.(type) {
		case *Assign:
			rewritten[i] = &Assign{Target: x.Target, Value: cp.rewrite(x.Value, constants), Line: x.Line}
		case *Assert:
			rewritten[i] = &Assert{Cond: cp.rewrite(x.Cond, constants), Line: x.Line}
		case *Phi:
			phi := &Phi{Result: x.Result, Operands: append([]Name(nil), x.Operands...)}
			if x.Guard != nil {
				phi.Guard = cp.rewrite(x.Guard, constants)
			}
			rewritten[i] = phi
		default:
			rewritten[i] = inst
		}
	}
	program.Instructions = rewritten

	return cp.Propagated+cp.Folded > before
}

func (cp *ConstantPropagation) rewrite(e Expr, constants map[Name]int64) Expr {
	switch x := e.(type) {
	case *Ref:
		if value, ok := constants[x.Name]; ok {
			cp.Propagated++
			return &Const{Value: value}
		}
		return x
	case *Index:
		return &Index{Array: x.Array, Index: cp.rewrite(x.Index, constants)}
	case *Binary:
		left := cp.rewrite(x.Left, constants)
		right := cp.rewrite(x.Right, constants)
		l, lok := left.(*Const)
		r, rok := right.(*Const)
		if lok && rok {
			value, err := Eval(x.Op, l.Value, r.Value)
			if err == nil {
				cp.Folded++
				return &Const{Value: value}
			}
			cp.Suppressed++
			commonlog.GetLogger("progcheck.ir").Debugf("fold suppressed: %s", err)
		}
		return &Binary{Op: x.Op, Left: left, Right: right}
	case *Unary:
		operand := cp.rewrite(x.Operand, constants)
		if c, ok := operand.(*Const); ok {
			if value, err := EvalUnary(x.Op, c.Value); err == nil {
				cp.Folded++
				return &Const{Value: value}
			}
		}
		return &Unary{Op: x.Op, Operand: operand}
	}
	return e
}

// DeadCodeElimination drops assignments whose target is never read. Phi
// results and assertions are always kept.
type DeadCodeElimination struct {
	Removed int
}

func (dce *DeadCodeElimination) Name() string {
	return "Dead Code Elimination"
}

func (dce *DeadCodeElimination) Description() string {
	return "Removes assignments whose result has no uses"
}

func (dce *DeadCodeElimination) Apply(program *Program) bool {
	uses := CountUses(program.Instructions)

	kept := make([]Instruction, 0, len(program.Instructions))
	for _, inst := range program.Instructions {
		if assign, ok := inst.(*Assign); ok && uses[assign.Target] == 0 {
			dce.Removed++
			continue
		}
		kept = append(kept, inst)
	}

	changed := len(kept) != len(program.Instructions)
	program.Instructions = kept
	return changed
}

// CountUses counts every read of every name across instrs, including phi
// operands, phi guards and array names.
func CountUses(instrs []Instruction) map[Name]int {
	uses := make(map[Name]int)
	for _, inst := range instrs {
		for _, name := range Reads(inst) {
			uses[name]++
		}
	}
	return uses
}
