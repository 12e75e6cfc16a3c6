package smt

import (
	"fmt"

	"progcheck/grammar"
)

// ParseScript reads an SMT-LIB2 script back into a Script. Only the commands
// Script.String emits are accepted; check-sat and get-model are implied.
func ParseScript(name, source string) (*Script, error) {
	doc, err := grammar.ParseString(name, source)
	if err != nil {
		return nil, err
	}

	script := &Script{}
	for _, cmd := range doc.Exprs {
		items := cmd.Items()
		switch cmd.Head() {
		case "set-logic":
			if len(items) != 2 {
				return nil, commandError(cmd, "set-logic takes one argument")
			}
			script.Logic = items[1].SymbolName()
		case "declare-const":
			if len(items) != 3 || items[1].SymbolName() == "" {
				return nil, commandError(cmd, "malformed declare-const")
			}
			script.declare(Declaration{Name: items[1].SymbolName(), Sort: Sort(items[2].SymbolName())})
		case "declare-fun":
			if len(items) != 4 || items[1].SymbolName() == "" || !items[2].IsList() {
				return nil, commandError(cmd, "malformed declare-fun")
			}
			d := Declaration{Name: items[1].SymbolName(), Sort: Sort(items[3].SymbolName())}
			for _, p := range items[2].Items() {
				d.Params = append(d.Params, Sort(p.SymbolName()))
			}
			script.declare(d)
		case "assert":
			if len(items) != 2 {
				return nil, commandError(cmd, "assert takes one formula")
			}
			script.assert(items[1].String())
		case "check-sat", "get-model", "exit":
		default:
			return nil, commandError(cmd, "unsupported command")
		}
	}
	return script, nil
}

func commandError(cmd *grammar.SExpr, reason string) error {
	return fmt.Errorf("%s: %s: %s", cmd.Pos, reason, cmd)
}
