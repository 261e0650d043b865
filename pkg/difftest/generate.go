package difftest

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// maxDepth bounds generated nesting. The branch weights alone average one
// child per node, so unbounded generation can run away.
const maxDepth = 8

// NestedExpr generates closed arithmetic: numbers, parentheses, + and *.
// Every input it produces evaluates without error.
func NestedExpr(r *rand.Rand) string {
	return nestedExpr(r, 0)
}

func nestedExpr(r *rand.Rand, depth int) string {
	n := r.IntN(10)
	if depth >= maxDepth {
		n = 0
	}
	switch {
	case n < 4:
		return randomNumber(r)
	case n < 6:
		return "(" + nestedExpr(r, depth+1) + ")"
	case n < 8:
		return nestedExpr(r, depth+1) + "+" + nestedExpr(r, depth+1)
	default:
		return nestedExpr(r, depth+1) + "*" + nestedExpr(r, depth+1)
	}
}

// ExprString generates expressions with variables and _let as well. The
// variables are usually free, so many inputs are expected to fail; two
// implementations must still fail alike.
func ExprString(r *rand.Rand) string {
	return exprString(r, 0)
}

func exprString(r *rand.Rand, depth int) string {
	n := r.IntN(10)
	if depth >= maxDepth {
		n = 0
	}
	switch {
	case n < 3:
		return randomNumber(r)
	case n < 6:
		return randomVar(r)
	case n == 6:
		return "(" + exprString(r, depth+1) + ")"
	case n == 7:
		return exprString(r, depth+1) + "+" + exprString(r, depth+1)
	case n == 8:
		return exprString(r, depth+1) + "*" + exprString(r, depth+1)
	default:
		return "_let " + randomVar(r) + " = " + exprString(r, depth+1) +
			" _in " + exprString(r, depth+1)
	}
}

func randomNumber(r *rand.Rand) string {
	return strconv.Itoa(int(r.Int32()))
}

// randomVar returns "x" most of the time, otherwise a run of mixed-case
// letters.
func randomVar(r *rand.Rand) string {
	if r.IntN(10) < 6 {
		return "x"
	}
	var word strings.Builder
	word.WriteByte(randomLetter(r))
	for r.IntN(100) > 33 {
		word.WriteByte(randomLetter(r))
	}
	return word.String()
}

func randomLetter(r *rand.Rand) byte {
	c := byte('a' + r.IntN(26))
	if r.IntN(2) == 0 {
		c -= 'a' - 'A'
	}
	return c
}
