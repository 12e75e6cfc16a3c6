package ir

// Reads returns the names an instruction reads, in operand order and with
// repetitions. Array names used in an Index count as reads.
func Reads(inst Instruction) []Name {
	var names []Name
	switch i := inst.(type) {
	case *Assign:
		names = exprReads(i.Value, names)
	case *Assert:
		names = exprReads(i.Cond, names)
	case *Phi:
		names = append(names, i.Operands...)
		if i.Guard != nil {
			names = exprReads(i.Guard, names)
		}
	}
	return names
}

// Writes returns the name an instruction defines, if any.
func Writes(inst Instruction) (Name, bool) {
	switch i := inst.(type) {
	case *Assign:
		return i.Target, true
	case *Phi:
		return i.Result, true
	}
	return Name{}, false
}

func exprReads(e Expr, acc []Name) []Name {
	switch x := e.(type) {
	case *Ref:
		acc = append(acc, x.Name)
	case *Index:
		acc = append(acc, x.Array)
		acc = exprReads(x.Index, acc)
	case *Binary:
		acc = exprReads(x.Left, acc)
		acc = exprReads(x.Right, acc)
	case *Unary:
		acc = exprReads(x.Operand, acc)
	}
	return acc
}

// Arrays returns the distinct array names read anywhere in instrs, in first
// occurrence order.
func Arrays(instrs []Instruction) []Name {
	seen := make(map[Name]bool)
	var arrays []Name
	var visit func(Expr)
	visit = func(e Expr) {
		switch x := e.(type) {
		case *Index:
			if !seen[x.Array] {
				seen[x.Array] = true
				arrays = append(arrays, x.Array)
			}
			visit(x.Index)
		case *Binary:
			visit(x.Left)
			visit(x.Right)
		case *Unary:
			visit(x.Operand)
		}
	}
	for _, inst := range instrs {
		switch i := inst.(type) {
		case *Assign:
			visit(i.Value)
		case *Assert:
			visit(i.Cond)
		case *Phi:
			if i.Guard != nil {
				visit(i.Guard)
			}
		}
	}
	return arrays
}

// CheckDefinitions verifies that every name read is written by an earlier
// instruction or is a free input. Operands of unguarded loop-entry phis are
// exempt because their back-edge operand is produced later in the stream.
func CheckDefinitions(instrs []Instruction) error {
	defined := make(map[Name]bool)
	for idx, inst := range instrs {
		if phi, ok := inst.(*Phi); !ok || phi.Guard != nil {
			for _, name := range Reads(inst) {
				if defined[name] || name.IsInput() {
					continue
				}
				return &UndefinedNameError{Name: name, Index: idx}
			}
		}
		if name, ok := Writes(inst); ok {
			if defined[name] || name.IsInput() {
				return &RedefinitionError{Name: name, Index: idx}
			}
			defined[name] = true
		}
	}
	return nil
}
