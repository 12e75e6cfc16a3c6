// Package cfg builds the control flow graph of a parsed program.
//
// The graph is purely structural. Nodes are numbered in pre-order over the
// AST and labeled with the rendered source of their statement:
//
//   - sequential statements are chained with unlabeled edges
//   - an if statement becomes a decision node followed by synthetic "then"
//     and "else" nodes, reached through edges labeled "T" and "F"
//   - a while loop becomes a decision node and a synthetic "loop body" node
//     reached through a "T" edge, with a back edge from the end of the body
//   - a for loop adds its init statement before the decision and its update
//     statement at the end of the body
//
// Loops have no exit edge. Consumers computing reachability must treat the
// missing "F" edge of a loop decision as fallthrough.
package cfg
