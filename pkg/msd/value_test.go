package msd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "42", NumValue{Val: 42}.String())
	assert.Equal(t, "-7", NumValue{Val: -7}.String())
	assert.Equal(t, "_true", BoolValue{Val: true}.String())
	assert.Equal(t, "_false", BoolValue{Val: false}.String())
	assert.Equal(t, "[function]", FunctionValue{Param: "x", Body: vr("x"), Closure: EmptyEnv}.String())
}

func TestValueEquals(t *testing.T) {
	f := FunctionValue{Param: "x", Body: add(vr("x"), num(1)), Closure: EmptyEnv}

	assert.True(t, NumValue{Val: 3}.Equals(NumValue{Val: 3}))
	assert.False(t, NumValue{Val: 3}.Equals(NumValue{Val: 4}))
	assert.False(t, NumValue{Val: 1}.Equals(BoolValue{Val: true}))
	assert.False(t, BoolValue{Val: false}.Equals(NumValue{Val: 0}))
	assert.True(t, BoolValue{Val: true}.Equals(BoolValue{Val: true}))
	assert.False(t, f.Equals(NumValue{Val: 1}))
	assert.True(t, f.Equals(FunctionValue{Param: "x", Body: add(vr("x"), num(1)), Closure: EmptyEnv}))
	assert.False(t, f.Equals(FunctionValue{Param: "y", Body: add(vr("x"), num(1)), Closure: EmptyEnv}))
	assert.False(t, f.Equals(FunctionValue{
		Param:   "x",
		Body:    add(vr("x"), num(1)),
		Closure: EmptyEnv.Extend("y", NumValue{Val: 1}),
	}))
}

func TestValueArithmetic(t *testing.T) {
	sum, err := NumValue{Val: 20}.Add(NumValue{Val: 22})
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: 42}, sum)

	product, err := NumValue{Val: -6}.Multiply(NumValue{Val: 4})
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: -24}, product)

	f := FunctionValue{Param: "x", Body: vr("x"), Closure: EmptyEnv}
	for _, tc := range []struct {
		name string
		fn   func() (Value, error)
	}{
		{"num plus bool", func() (Value, error) { return NumValue{Val: 1}.Add(BoolValue{Val: true}) }},
		{"bool plus num", func() (Value, error) { return BoolValue{Val: true}.Add(NumValue{Val: 1}) }},
		{"bool plus bool", func() (Value, error) { return BoolValue{Val: true}.Add(BoolValue{Val: false}) }},
		{"function plus num", func() (Value, error) { return f.Add(NumValue{Val: 1}) }},
		{"num times function", func() (Value, error) { return NumValue{Val: 1}.Multiply(f) }},
		{"bool times num", func() (Value, error) { return BoolValue{Val: true}.Multiply(NumValue{Val: 2}) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			require.ErrorIs(t, err, ErrInvalidOperand)
		})
	}
}

func TestValueTruthy(t *testing.T) {
	ok, err := BoolValue{Val: true}.Truthy()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = BoolValue{Val: false}.Truthy()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NumValue{Val: 1}.Truthy()
	require.ErrorIs(t, err, ErrInvalidOperand)

	_, err = FunctionValue{Param: "x", Body: vr("x")}.Truthy()
	require.ErrorIs(t, err, ErrInvalidOperand)
}

func TestValueCall(t *testing.T) {
	ctx := context.Background()

	double := FunctionValue{Param: "x", Body: mult(vr("x"), num(2)), Closure: EmptyEnv}
	result, err := double.Call(ctx, NumValue{Val: 21})
	require.NoError(t, err)
	assert.Equal(t, NumValue{Val: 42}, result)

	// The body only sees the parameter on top of the closure.
	outer := FunctionValue{Param: "x", Body: vr("y"), Closure: EmptyEnv}
	_, err = outer.Call(ctx, NumValue{Val: 1})
	var unbound *UnboundVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "y", unbound.Name)

	_, err = NumValue{Val: 1}.Call(ctx, NumValue{Val: 2})
	require.ErrorIs(t, err, ErrInvalidOperand)
	_, err = BoolValue{Val: true}.Call(ctx, NumValue{Val: 2})
	require.ErrorIs(t, err, ErrInvalidOperand)
}

func TestValueToNode(t *testing.T) {
	assert.True(t, num(5).Equals(NumValue{Val: 5}.ToNode()))
	assert.True(t, boolean(true).Equals(BoolValue{Val: true}.ToNode()))
	body := add(vr("x"), num(1))
	assert.True(t, fun("x", body).Equals(FunctionValue{Param: "x", Body: body}.ToNode()))
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(NumValue{Val: 12})
	require.NoError(t, err)
	assert.JSONEq(t, `12`, string(b))

	b, err = json.Marshal(BoolValue{Val: true})
	require.NoError(t, err)
	assert.JSONEq(t, `true`, string(b))

	b, err = json.Marshal(FunctionValue{Param: "x", Body: mult(vr("x"), vr("x"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"param": "x", "body": "(x*x)"}`, string(b))

	_, err = json.Marshal(FunctionValue{Param: "x"})
	require.Error(t, err)
}
