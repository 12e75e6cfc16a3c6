package ir

import (
	"maps"
	"slices"

	"github.com/tliron/commonlog"

	"progcheck/internal/ast"
)

// BuildOptions tunes SSA construction.
type BuildOptions struct {
	// UnrollDepth peels that many iterations off every loop as nested
	// conditionals before the remaining loop is merged with phi nodes.
	// Zero translates each loop exactly once.
	UnrollDepth int
}

// Builder converts an AST into SSA form. A Builder holds the version map for
// a single pass and must not be shared between goroutines.
type Builder struct {
	options BuildOptions
	log     commonlog.Logger

	// SSA construction state
	versions     map[string]int // live version per base name
	counters     map[string]int // highest version ever allocated per base name
	instructions []Instruction
}

func NewBuilder(options BuildOptions) *Builder {
	return &Builder{
		options:  options,
		log:      commonlog.GetLogger("progcheck.ir"),
		versions: make(map[string]int),
		counters: make(map[string]int),
	}
}

// Build converts prog with default options.
func Build(prog *ast.Program) (*Program, error) {
	return NewBuilder(BuildOptions{}).Build(prog)
}

// Build runs the pass. The builder is reset first so it may be reused.
func (b *Builder) Build(prog *ast.Program) (*Program, error) {
	b.versions = make(map[string]int)
	b.counters = make(map[string]int)
	b.instructions = nil

	if err := b.buildBlock(prog.Body); err != nil {
		return nil, err
	}

	b.log.Debugf("built %d SSA instructions", len(b.instructions))
	return &Program{
		Instructions:  b.instructions,
		FinalVersions: maps.Clone(b.versions),
	}, nil
}

func (b *Builder) buildBlock(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := b.buildStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildStatement(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Assignment:
		return b.buildAssignment(s)
	case *ast.If:
		return b.buildIf(s)
	case *ast.While:
		return b.buildLoop(s.Cond, s.Body, s.Pos, b.options.UnrollDepth)
	case *ast.For:
		// init; while (cond) { body; update }
		if err := b.buildAssignment(s.Init); err != nil {
			return err
		}
		body := append(slices.Clone(s.Body), s.Update)
		return b.buildLoop(s.Cond, body, s.Pos, b.options.UnrollDepth)
	case *ast.Assert:
		cond, err := b.buildExpr(s.Cond, s.Pos.Line)
		if err != nil {
			return err
		}
		b.emit(&Assert{Cond: cond, Line: s.Pos.Line})
		return nil
	}
	return unknownConstruct(stmt, 0)
}

func (b *Builder) buildAssignment(s *ast.Assignment) error {
	value, err := b.buildExpr(s.Value, s.Pos.Line)
	if err != nil {
		return err
	}
	target := b.newVersion(s.Target)
	b.emit(&Assign{Target: target, Value: value, Line: s.Pos.Line})
	return nil
}

func (b *Builder) buildIf(s *ast.If) error {
	cond, err := b.buildExpr(s.Cond, s.Pos.Line)
	if err != nil {
		return err
	}
	return b.branch(cond,
		func() error { return b.buildBlock(s.Then) },
		func() error { return b.buildBlock(s.Else) })
}

// branch builds both arms from the same starting versions and emits a
// guarded phi for every name whose version differs between the arms.
func (b *Builder) branch(cond Expr, then, otherwise func() error) error {
	before := maps.Clone(b.versions)
	if err := then(); err != nil {
		return err
	}
	afterThen := b.versions

	b.versions = maps.Clone(before)
	if err := otherwise(); err != nil {
		return err
	}
	afterElse := b.versions

	for _, name := range unionKeys(afterThen, afterElse) {
		thenVersion, elseVersion := afterThen[name], afterElse[name]
		if thenVersion == elseVersion {
			b.versions[name] = thenVersion
			continue
		}
		result := b.newVersion(name)
		b.emit(&Phi{
			Result:   result,
			Operands: []Name{{name, thenVersion}, {name, elseVersion}},
			Guard:    cond,
		})
	}
	return nil
}

// buildLoop translates while (cond) { body }. With unroll > 0 one iteration
// is peeled into a conditional around the rest of the loop.
func (b *Builder) buildLoop(condition ast.Expr, body []ast.Stmt, pos ast.Position, unroll int) error {
	if unroll > 0 {
		cond, err := b.buildExpr(condition, pos.Line)
		if err != nil {
			return err
		}
		return b.branch(cond,
			func() error {
				if err := b.buildBlock(body); err != nil {
					return err
				}
				return b.buildLoop(condition, body, pos, unroll-1)
			},
			func() error { return nil })
	}

	before := maps.Clone(b.versions)

	assigned := assignedNames(body)
	entries := make(map[string]*Phi, len(assigned))
	for _, name := range assigned {
		pre := Name{name, b.versions[name]}
		phi := &Phi{Result: b.newVersion(name), Operands: []Name{pre}}
		entries[name] = phi
		b.emit(phi)
	}

	cond, err := b.buildExpr(condition, pos.Line)
	if err != nil {
		return err
	}
	if err := b.buildBlock(body); err != nil {
		return err
	}

	// back edge
	for _, name := range assigned {
		entries[name].Operands = append(entries[name].Operands, Name{name, b.versions[name]})
	}

	exit := &Unary{Op: ast.OpNot, Operand: cond}
	for _, name := range sortedKeys(b.versions) {
		post := b.versions[name]
		if post == before[name] {
			continue
		}
		result := b.newVersion(name)
		b.emit(&Phi{
			Result:   result,
			Operands: []Name{{name, before[name]}, {name, post}},
			Guard:    exit,
		})
	}
	b.log.Debugf("loop at line %d: %d entry phis", pos.Line, len(assigned))
	return nil
}

func (b *Builder) buildExpr(expr ast.Expr, line int) (Expr, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return &Const{Value: e.Value}, nil
	case *ast.Variable:
		return &Ref{Name: b.current(e.Name)}, nil
	case *ast.ArrayAccess:
		index, err := b.buildExpr(e.Index, line)
		if err != nil {
			return nil, err
		}
		return &Index{Array: b.current(e.Array), Index: index}, nil
	case *ast.BinaryOp:
		left, err := b.buildExpr(e.Left, line)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(e.Right, line)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: e.Op, Left: left, Right: right}, nil
	case *ast.UnaryOp:
		operand, err := b.buildExpr(e.Operand, line)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: e.Op, Operand: operand}, nil
	}
	return nil, unknownConstruct(expr, line)
}

func (b *Builder) emit(inst Instruction) {
	b.instructions = append(b.instructions, inst)
}

// current returns the live version of name. Unseen names are recorded at
// version 0 so they show up in FinalVersions as inputs.
func (b *Builder) current(name string) Name {
	if _, ok := b.versions[name]; !ok {
		b.versions[name] = 0
	}
	return Name{name, b.versions[name]}
}

// newVersion allocates a version above every version of name handed out so
// far and makes it live.
func (b *Builder) newVersion(name string) Name {
	b.counters[name]++
	b.versions[name] = b.counters[name]
	return Name{name, b.counters[name]}
}

// assignedNames lists, sorted, every name assigned anywhere in stmts.
func assignedNames(stmts []ast.Stmt) []string {
	set := make(map[string]bool)
	var walk func([]ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assignment:
				set[s.Target] = true
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			case *ast.While:
				walk(s.Body)
			case *ast.For:
				set[s.Init.Target] = true
				set[s.Update.Target] = true
				walk(s.Body)
			}
		}
	}
	walk(stmts)
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func unionKeys(a, b map[string]int) []string {
	set := make(map[string]bool, len(a)+len(b))
	for k := range a {
		set[k] = true
	}
	for k := range b {
		set[k] = true
	}
	return sortedKeys(set)
}
