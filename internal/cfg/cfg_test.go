package cfg

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progcheck/internal/parser"
)

func buildGraph(t *testing.T, source string) *Graph {
	t.Helper()
	prog, err := parser.Parse(source)
	require.NoError(t, err)
	return Build(prog)
}

func labels(g *Graph) []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Label
	}
	return out
}

func TestNodeIDsFollowPreorder(t *testing.T) {
	g := buildGraph(t, "a := 1; if (a > 0) { while (a < 9) { a := a * 2; } } else { b := a; } c := 2;")
	for i, n := range g.Nodes {
		assert.Equal(t, i, n.ID)
	}
	assert.Equal(t, []string{
		"a := 1", "if (a > 0)", "then", "while (a < 9)", "loop body", "a := a * 2", "else", "b := a", "c := 2",
	}, labels(g))
}

func TestBuildIfElse(t *testing.T) {
	g := buildGraph(t, `x := 3;
if (x < 5) {
    y := x + 1;
} else {
    y := x - 1;
}
assert(y > 0);`)

	assert.Equal(t, []string{
		"x := 3",
		"if (x < 5)",
		"then",
		"y := x + 1",
		"else",
		"y := x - 1",
		"assert(y > 0)",
	}, labels(g))

	assert.Equal(t, []Edge{
		{From: 0, To: 1},
		{From: 1, To: 2, Label: LabelTrue},
		{From: 2, To: 3},
		{From: 1, To: 4, Label: LabelFalse},
		{From: 4, To: 5},
		{From: 3, To: 6},
		{From: 5, To: 6},
	}, g.Edges)
}

func TestBuildIfWithoutElseStillHasElseNode(t *testing.T) {
	g := buildGraph(t, "if (x > 0) { x := 0; } y := x;")

	assert.Equal(t, []string{"if (x > 0)", "then", "x := 0", "else", "y := x"}, labels(g))
	assert.Equal(t, []Edge{
		{From: 0, To: 1, Label: LabelTrue},
		{From: 1, To: 2},
		{From: 0, To: 3, Label: LabelFalse},
		{From: 2, To: 4},
		{From: 3, To: 4},
	}, g.Edges)
}

func TestBuildWhileHasBackEdgeAndNoExit(t *testing.T) {
	g := buildGraph(t, "i := 0;\nwhile (i < 3) {\n    i := i + 1;\n}\nassert(i == 3);")

	assert.Equal(t, []string{"i := 0", "while (i < 3)", "loop body", "i := i + 1", "assert(i == 3)"}, labels(g))
	assert.Equal(t, []Edge{
		{From: 0, To: 1},
		{From: 1, To: 2, Label: LabelTrue},
		{From: 2, To: 3},
		{From: 3, To: 1},
	}, g.Edges)

	for _, e := range g.Successors(1) {
		assert.NotEqual(t, LabelFalse, e.Label)
	}
}

func TestBuildFor(t *testing.T) {
	g := buildGraph(t, "for (i := 0; i < n; i := i + 1) { s := s + i; }")

	assert.Equal(t, []string{"i := 0", "while (i < n)", "loop body", "s := s + i", "i := i + 1"}, labels(g))
	assert.Equal(t, []Edge{
		{From: 0, To: 1},
		{From: 1, To: 2, Label: LabelTrue},
		{From: 2, To: 3},
		{From: 3, To: 4},
		{From: 4, To: 1},
	}, g.Edges)
}

func TestBuildEmptyProgram(t *testing.T) {
	g := buildGraph(t, "")
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestGraphJSON(t *testing.T) {
	g := buildGraph(t, "if (x == 1) { y := 2; }")

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": 0, "label": "if (x == 1)"},
			{"id": 1, "label": "then"},
			{"id": 2, "label": "y := 2"},
			{"id": 3, "label": "else"}
		],
		"edges": [
			{"from": 0, "to": 1, "label": "T"},
			{"from": 1, "to": 2},
			{"from": 0, "to": 3, "label": "F"}
		]
	}`, string(data))
}

func TestWriteDot(t *testing.T) {
	g := buildGraph(t, "x := 1;\nwhile (x < 3) {\n    x := x + 1;\n}")

	var buf bytes.Buffer
	require.NoError(t, g.WriteDot(&buf))

	expected := `
digraph cfg {
	node [shape=box];
	0 [label="x := 1"];
	1 [label="while (x < 3)"];
	2 [label="loop body"];
	3 [label="x := x + 1"];
	0 -> 1;
	1 -> 2 [label="T"];
	2 -> 3;
	3 -> 1;
}
`
	assert.Equal(t, strings.TrimLeft(expected, "\n"), buf.String())
}
