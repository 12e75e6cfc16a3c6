package cfg

import (
	"fmt"
	"io"
	"strconv"

	"progcheck/internal/ast"
)

const (
	LabelTrue  = "T"
	LabelFalse = "F"

	ThenLabel     = "then"
	ElseLabel     = "else"
	LoopBodyLabel = "loop body"
)

type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// Graph is immutable once built.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// exit is a dangling edge waiting for the next statement.
type exit struct {
	from  int
	label string
}

type builder struct {
	graph *Graph
}

// Build constructs the graph of prog in one pre-order pass. It is total over
// every program the parser accepts.
func Build(prog *ast.Program) *Graph {
	b := &builder{graph: &Graph{Nodes: []Node{}, Edges: []Edge{}}}
	b.buildBlock(prog.Body, nil)
	return b.graph
}

func (b *builder) addNode(label string) int {
	id := len(b.graph.Nodes)
	b.graph.Nodes = append(b.graph.Nodes, Node{ID: id, Label: label})
	return id
}

func (b *builder) addEdge(from, to int, label string) {
	b.graph.Edges = append(b.graph.Edges, Edge{From: from, To: to, Label: label})
}

// enter creates a node and connects every pending exit to it.
func (b *builder) enter(label string, preds []exit) int {
	id := b.addNode(label)
	for _, pred := range preds {
		b.addEdge(pred.from, id, pred.label)
	}
	return id
}

func (b *builder) buildBlock(stmts []ast.Stmt, preds []exit) []exit {
	for _, stmt := range stmts {
		preds = b.buildStatement(stmt, preds)
	}
	return preds
}

func (b *builder) buildStatement(stmt ast.Stmt, preds []exit) []exit {
	switch s := stmt.(type) {
	case *ast.If:
		decision := b.enter(ast.Header(s), preds)

		then := b.enter(ThenLabel, []exit{{decision, LabelTrue}})
		exits := b.buildBlock(s.Then, []exit{{then, ""}})

		otherwise := b.enter(ElseLabel, []exit{{decision, LabelFalse}})
		return append(exits, b.buildBlock(s.Else, []exit{{otherwise, ""}})...)

	case *ast.While:
		decision := b.enter(ast.Header(s), preds)
		b.buildLoopBody(decision, s.Body, nil)
		return nil

	case *ast.For:
		init := b.enter(s.Init.String(), preds)
		decision := b.enter(fmt.Sprintf("while (%s)", s.Cond), []exit{{init, ""}})
		b.buildLoopBody(decision, s.Body, s.Update)
		return nil

	default:
		id := b.enter(stmt.String(), preds)
		return []exit{{id, ""}}
	}
}

func (b *builder) buildLoopBody(decision int, body []ast.Stmt, update *ast.Assignment) {
	entry := b.enter(LoopBodyLabel, []exit{{decision, LabelTrue}})
	exits := b.buildBlock(body, []exit{{entry, ""}})
	if update != nil {
		id := b.enter(update.String(), exits)
		exits = []exit{{id, ""}}
	}
	for _, e := range exits {
		b.addEdge(e.from, decision, e.label)
	}
}

// Successors returns the edges leaving id in insertion order.
func (g *Graph) Successors(id int) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// WriteDot writes the graph in Graphviz format.
func (g *Graph) WriteDot(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph cfg {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "\tnode [shape=box];")
	for _, n := range g.Nodes {
		fmt.Fprintf(w, "\t%d [label=%s];\n", n.ID, strconv.Quote(n.Label))
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(w, "\t%d -> %d [label=%s];\n", e.From, e.To, strconv.Quote(e.Label))
		} else {
			fmt.Fprintf(w, "\t%d -> %d;\n", e.From, e.To)
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
