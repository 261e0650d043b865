package msd

import (
	"bytes"
	"strings"
)

// precedence is the binding strength of the context a node is printed in.
type precedence int

const (
	precNone precedence = iota
	precAdd
	precMult
	precCall
)

// Formatter renders nodes in the pretty form: as few parentheses as
// re-parsing allows, with _let/_if/_fun bodies broken across lines and
// aligned to the column where the construct starts.
type Formatter struct {
	buf bytes.Buffer
	col int // column on the current line, 0-based
}

// Pretty returns the pretty form of node. Parsing the result yields a node
// equal to the input.
func Pretty(node Node) string {
	f := &Formatter{}
	f.formatNode(node, precNone, false, false)
	return f.buf.String()
}

func (f *Formatter) write(s string) {
	f.buf.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		f.col = len(s) - idx - 1
	} else {
		f.col += len(s)
	}
}

func (f *Formatter) newline(indent int) {
	f.write("\n" + strings.Repeat(" ", indent))
}

// wrapped runs body, inside parentheses if wrap is set. body receives
// whether its rightmost operand is still followed by something in the
// enclosing context; parentheses close that off.
func (f *Formatter) wrapped(wrap, open bool, body func(open bool)) {
	if !wrap {
		body(open)
		return
	}
	f.write("(")
	body(false)
	f.write(")")
}

// formatNode prints node in a context of the given precedence. left is set
// when node is the left operand of that context. open is set when more
// operators follow node on the same level, so a trailing keyword construct
// would swallow them.
func (f *Formatter) formatNode(node Node, prec precedence, left, open bool) {
	switch n := node.(type) {
	case *Num, *Bool, *Var:
		f.write(n.String())

	case *Add:
		wrap := prec >= precMult || (prec == precAdd && left)
		f.wrapped(wrap, open, func(open bool) {
			f.formatNode(n.Left, precAdd, true, true)
			f.write(" + ")
			f.formatNode(n.Right, precAdd, false, open)
		})

	case *Mult:
		wrap := (prec == precMult && left) || prec == precCall
		f.wrapped(wrap, open, func(open bool) {
			f.formatNode(n.Left, precMult, true, false)
			f.write(" * ")
			f.formatNode(n.Right, precMult, false, open)
		})

	case *Eq:
		wrap := prec > precNone
		f.wrapped(wrap, open, func(open bool) {
			f.formatNode(n.Left, precAdd, false, true)
			f.write(" == ")
			f.formatNode(n.Right, precNone, false, open)
		})

	case *Let:
		f.wrapped(left || open, open, func(bool) {
			indent := f.col
			f.write("_let " + n.Name + " = ")
			f.formatNode(n.Bound, precNone, false, false)
			f.newline(indent)
			f.write("_in ")
			f.formatNode(n.Body, precNone, false, false)
		})

	case *If:
		f.wrapped(left || open, open, func(bool) {
			indent := f.col
			f.write("_if ")
			f.formatNode(n.Cond, precNone, false, false)
			f.newline(indent)
			f.write("_then ")
			f.formatNode(n.Then, precNone, false, false)
			f.newline(indent)
			f.write("_else ")
			f.formatNode(n.Else, precNone, false, false)
		})

	case *Fun:
		f.wrapped(left || open, open, func(bool) {
			indent := f.col
			f.write("_fun (" + n.Param + ")")
			f.newline(indent)
			f.formatNode(n.Body, precNone, false, false)
		})

	case *Call:
		f.formatNode(n.Callee, precCall, true, true)
		f.write("(")
		f.formatNode(n.Arg, precNone, false, false)
		f.write(")")

	default:
		// Unknown node types fall back to the canonical form.
		f.write(node.String())
	}
}
