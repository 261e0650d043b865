package msd

import (
	"context"
	"fmt"
)

// Node is an expression tree node. Nodes own their children and are never
// mutated after construction.
type Node interface {
	SourceLocatable

	// String renders the canonical, fully parenthesized form. Parsing it
	// yields a node equal to the receiver.
	fmt.Stringer

	Eval(ctx context.Context, env Env) (Value, error)

	// Equals compares structure. Source locations are ignored.
	Equals(Node) bool

	// Walk recursively visits this node and all its children, calling fn for each node.
	// The callback returns true to continue walking into children, false to skip children.
	Walk(fn func(Node) bool)
}

// Interp evaluates node in the empty environment.
func Interp(ctx context.Context, node Node) (Value, error) {
	return node.Eval(ctx, EmptyEnv)
}

// FreeVariables returns the names node reads without binding them first, in
// order of first appearance.
func FreeVariables(node Node) []string {
	var free []string
	seen := map[string]bool{}
	var visit func(n Node, bound map[string]bool)
	visit = func(n Node, bound map[string]bool) {
		switch n := n.(type) {
		case *Var:
			if !bound[n.Name] && !seen[n.Name] {
				seen[n.Name] = true
				free = append(free, n.Name)
			}
		case *Let:
			visit(n.Bound, bound)
			visit(n.Body, with(bound, n.Name))
		case *Fun:
			// Function bodies run in a fresh environment holding only the
			// parameter.
			visit(n.Body, map[string]bool{n.Param: true})
		default:
			n.Walk(func(child Node) bool {
				if child == n {
					return true
				}
				visit(child, bound)
				return false
			})
		}
	}
	visit(node, map[string]bool{})
	return free
}

func with(bound map[string]bool, name string) map[string]bool {
	cp := make(map[string]bool, len(bound)+1)
	for k, v := range bound {
		cp[k] = v
	}
	cp[name] = true
	return cp
}
