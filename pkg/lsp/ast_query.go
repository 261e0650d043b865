package lsp

import (
	"maps"

	"github.com/newstack-cloud/ls-builder/lsp_3_17"

	"github.com/msdscript/msdscript/pkg/msd"
)

// resolveBinders links every variable reference to its binding *msd.Let or
// *msd.Fun, following evaluation scoping: a _let's bound expression does not
// see its own name, and a _fun body sees only its parameter.
func resolveBinders(root msd.Node) map[*msd.Var]msd.Node {
	binders := map[*msd.Var]msd.Node{}
	var visit func(n msd.Node, scope map[string]msd.Node)
	visit = func(n msd.Node, scope map[string]msd.Node) {
		switch n := n.(type) {
		case *msd.Var:
			if b, ok := scope[n.Name]; ok {
				binders[n] = b
			}
		case *msd.Let:
			visit(n.Bound, scope)
			inner := maps.Clone(scope)
			inner[n.Name] = n
			visit(n.Body, inner)
		case *msd.Fun:
			visit(n.Body, map[string]msd.Node{n.Param: n})
		default:
			n.Walk(func(child msd.Node) bool {
				if child == n {
					return true
				}
				visit(child, scope)
				return false
			})
		}
	}
	visit(root, map[string]msd.Node{})
	return binders
}

// tokenAt finds the token at a 0-based line and rune column. Operators and
// parentheses are not tokens here; keywords resolve to the expression they
// introduce, and binder names resolve to their *msd.Let or *msd.Fun.
func tokenAt(root msd.Node, line, col int) (msd.Node, *msd.SourceLocation) {
	var (
		hit    msd.Node
		hitLoc *msd.SourceLocation
	)
	root.Walk(func(n msd.Node) bool {
		if hit != nil {
			return false
		}
		var locs []*msd.SourceLocation
		switch n := n.(type) {
		case *msd.Var, *msd.Num, *msd.Bool, *msd.If:
			locs = append(locs, n.GetSourceLocation())
		case *msd.Let:
			locs = append(locs, n.Loc, n.NameLoc)
		case *msd.Fun:
			locs = append(locs, n.Loc, n.ParamLoc)
		}
		for _, loc := range locs {
			if contains(loc, line, col) {
				hit, hitLoc = n, loc
				return false
			}
		}
		return true
	})
	return hit, hitLoc
}

// contains reports whether line and col fall on loc, counting the column just
// past the end so a cursor after the last character still hits.
func contains(loc *msd.SourceLocation, line, col int) bool {
	if loc == nil || line != loc.Line-1 {
		return false
	}
	start := loc.Column - 1
	return col >= start && col <= start+max(loc.Length, 1)
}

// tokenAtPosition is tokenAt for a protocol position.
func (f *File) tokenAtPosition(pos lsp.Position) (msd.Node, *msd.SourceLocation) {
	if f.AST == nil {
		return nil, nil
	}
	line := int(pos.Line)
	return tokenAt(f.AST, line, f.fromUTF16(line, int(pos.Character)))
}

// symbolAt resolves pos to a binder. It reports the variable name under the
// cursor even when no binder exists, in which case binder is nil.
func symbolAt(f *File, pos lsp.Position) (binder msd.Node, name string, ok bool) {
	node, loc := f.tokenAtPosition(pos)
	switch n := node.(type) {
	case *msd.Var:
		return f.Binders[n], n.Name, true
	case *msd.Let:
		if loc == n.NameLoc {
			return n, n.Name, true
		}
	case *msd.Fun:
		if loc == n.ParamLoc {
			return n, n.Param, true
		}
	}
	return nil, "", false
}

func binderNameLoc(binder msd.Node) *msd.SourceLocation {
	switch b := binder.(type) {
	case *msd.Let:
		return b.NameLoc
	case *msd.Fun:
		return b.ParamLoc
	}
	return nil
}

// references lists the binder's own name followed by every variable it binds,
// in source order.
func references(f *File, binder msd.Node) []*msd.SourceLocation {
	var locs []*msd.SourceLocation
	if loc := binderNameLoc(binder); loc != nil {
		locs = append(locs, loc)
	}
	f.AST.Walk(func(n msd.Node) bool {
		if v, ok := n.(*msd.Var); ok && f.Binders[v] == binder && v.Loc != nil {
			locs = append(locs, v.Loc)
		}
		return true
	})
	return locs
}
