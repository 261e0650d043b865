package msd

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interpString(t *testing.T, src string) (Value, error) {
	t.Helper()
	node, err := Parse(src)
	require.NoError(t, err)
	return Interp(context.Background(), node)
}

func TestEval(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"5", NumValue{Val: 5}},
		{"1+2+3", NumValue{Val: 6}},
		{"2 * 3 + 4", NumValue{Val: 10}},
		{"2 * (3 + 4)", NumValue{Val: 14}},
		{"-3 * 4", NumValue{Val: -12}},
		{"1==2+3", BoolValue{Val: false}},
		{"(1 + 2) == (3 + 0)", BoolValue{Val: true}},
		{"1 == _true", BoolValue{Val: false}},
		{"_false == _false", BoolValue{Val: true}},
		{"(_fun (x) x) == (_fun (x) x)", BoolValue{Val: true}},
		{"(_fun (x) x) == (_fun (y) y)", BoolValue{Val: false}},
		{"_let x = 5 _in x + 1", NumValue{Val: 6}},
		{"_let x = 1 _in _let x = 2 _in x", NumValue{Val: 2}},
		{"_let x = 1 _in (_let x = 2 _in x) + x", NumValue{Val: 3}},
		{"_let x = 1 _in _let x = x + 1 _in x", NumValue{Val: 2}},
		{"_if _true _then 1 _else 2", NumValue{Val: 1}},
		{"_if 1 == 2 _then 1 _else 2", NumValue{Val: 2}},
		{"_if _false _then x _else 3", NumValue{Val: 3}},
		{"_let f = _fun (x) x * x _in f(5)", NumValue{Val: 25}},
		{"(_fun (x) x + 1)(41)", NumValue{Val: 42}},
		{"_let f = _fun (x) x _in f(f)(7)", NumValue{Val: 7}},
		{"_fun (x) x", FunctionValue{Param: "x", Body: vr("x"), Closure: EmptyEnv}},
		{"9223372036854775807 + 1", NumValue{Val: math.MinInt}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			val, err := interpString(t, tt.input)
			require.NoError(t, err)
			require.True(t, tt.expected.Equals(val), "expected %s, got %s", tt.expected, val)
		})
	}
}

func TestEvalShadowing(t *testing.T) {
	val, err := let("x", num(1), let("x", num(2), vr("x"))).Eval(context.Background(), EmptyEnv)
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: 2}, val)
}

func TestEvalInEnv(t *testing.T) {
	env := EmptyEnv.Extend("x", NumValue{Val: 10}).Extend("y", NumValue{Val: 3})
	val, err := add(vr("x"), mult(vr("y"), vr("y"))).Eval(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: 19}, val)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  error
	}{
		{"x", ErrUnboundVariable},
		{"_let x = 1 _in y", ErrUnboundVariable},
		{"_let x = x _in x", ErrUnboundVariable},
		{"_true + 1", ErrInvalidOperand},
		{"1 + _true", ErrInvalidOperand},
		{"_false * _false", ErrInvalidOperand},
		{"(_fun (x) x) + 1", ErrInvalidOperand},
		{"_if 1 _then 2 _else 3", ErrInvalidOperand},
		{"_if _fun (x) x _then 2 _else 3", ErrInvalidOperand},
		{"5(1)", ErrInvalidOperand},
		{"_true(1)", ErrInvalidOperand},
		{"f(1)", ErrUnboundVariable},
		// Function bodies do not see bindings from where they were defined.
		{"_let y = 2 _in (_fun (x) x + y)(1)", ErrUnboundVariable},
		{"(_fun (x) _fun (y) x + y)(1)(2)", ErrUnboundVariable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			val, err := interpString(t, tt.input)
			require.Nil(t, val)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestEvalErrorMessages(t *testing.T) {
	_, err := interpString(t, "x")
	require.EqualError(t, err, "free variable: x")

	var unbound *UnboundVariableError
	_, err = interpString(t, "(_fun (x) _fun (y) x + y)(1)(2)")
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "x", unbound.Name)

	var invalid *InvalidOperandError
	_, err = interpString(t, "1 + _true")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "addition", invalid.Op)
	assert.Equal(t, BoolValue{Val: true}, invalid.Operand)
	assert.EqualError(t, err, "invalid operand for addition: _true")

	_, err = interpString(t, "_if 1 _then 2 _else 3")
	assert.EqualError(t, err, "invalid operand for condition: 1")

	_, err = interpString(t, "(_fun (x) x) * 2")
	assert.EqualError(t, err, "invalid operand for multiplication: [function]")

	_, err = interpString(t, "3(2)")
	assert.EqualError(t, err, "invalid operand for call: 3")
}

func TestEvalLeftBeforeRight(t *testing.T) {
	// Both sides fail; the left one is reported.
	_, err := interpString(t, "a + b")
	require.EqualError(t, err, "free variable: a")

	_, err = interpString(t, "a == b")
	require.EqualError(t, err, "free variable: a")
}

func TestEvalSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, ModeInterp, "vars.msd", "_let x = 1 _in x + y", false)
	require.ErrorIs(t, err, ErrUnboundVariable)

	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)
	assert.Equal(t, 1, sourceErr.Location.Line)
	assert.Equal(t, 20, sourceErr.Location.Column)
	assert.Equal(t,
		"Error: free variable: y\n"+
			"  --> vars.msd:1:20\n"+
			"   1 | _let x = 1 _in x + y\n"+
			"                          ^",
		ansi.Strip(err.Error()))

	_, err = Run(ctx, ModeInterp, "ops.msd", "1 +\n  _true", false)
	require.ErrorIs(t, err, ErrInvalidOperand)
	require.ErrorAs(t, err, &sourceErr)
	assert.Equal(t, 1, sourceErr.Location.Line)
	assert.Equal(t, 1, sourceErr.Location.Column)

	// Only the innermost failing node is reported.
	require.False(t, errors.As(sourceErr.Inner, new(*SourceError)))
}

func TestEvalSourceErrorsUseContextFilename(t *testing.T) {
	src := "1 + y"
	node, err := Parse(src)
	require.NoError(t, err)

	ctx := WithEvalContext(context.Background(), NewEvalContext("calc.msd", src))
	_, err = Interp(ctx, node)
	require.ErrorIs(t, err, ErrUnboundVariable)

	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)
	assert.Equal(t, "calc.msd:1:5", sourceErr.Location.String())
	assert.Contains(t, ansi.Strip(err.Error()), "--> calc.msd:1:5")

	// The parsed tree keeps its own location.
	y := node.(*Add).Right.(*Var)
	assert.Equal(t, "", y.Loc.Filename)
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	val, err := Evaluate(ctx, "", "_let x = 5 _in x * x")
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: 25}, val)

	_, err = Evaluate(ctx, "", "1 +")
	require.ErrorIs(t, err, ErrBadInput)

	_, err = Evaluate(ctx, "free.msd", "z")
	require.ErrorIs(t, err, ErrUnboundVariable)
	assert.Contains(t, ansi.Strip(err.Error()), "free.msd:1:1")
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	src := "_let x = 5 _in (_let y = 3 _in y + 2) + x"

	out, err := Run(ctx, ModeInterp, "", src, false)
	require.NoError(t, err)
	assert.Equal(t, "10", out)

	out, err = Run(ctx, ModePrint, "", src, false)
	require.NoError(t, err)
	assert.Equal(t, "(_let x=5 _in ((_let y=3 _in (y+2))+x))", out)

	out, err = Run(ctx, ModePrettyPrint, "", src, false)
	require.NoError(t, err)
	assert.Equal(t, "_let x = 5\n_in (_let y = 3\n     _in y + 2) + x", out)

	_, err = Run(ctx, ModePrint, "", "1 +", false)
	require.ErrorIs(t, err, ErrBadInput)
}

func TestFreeVariables(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"1 + 2", nil},
		{"x + y * x", []string{"x", "y"}},
		{"_let x = 1 _in x + y", []string{"y"}},
		{"_let x = x _in x", []string{"x"}},
		{"_fun (x) x", nil},
		{"_let y = 1 _in _fun (x) x + y", []string{"y"}},
		{"f(_if c _then a _else b)", []string{"f", "c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FreeVariables(node))
		})
	}
}
