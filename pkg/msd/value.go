package msd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value represents a runtime value. Values are immutable.
type Value interface {
	// String returns the display form: digits, _true/_false, or
	// [function].
	String() string

	// ToNode reflects the value back to its literal expression.
	ToNode() Node

	Equals(Value) bool
	Add(Value) (Value, error)
	Multiply(Value) (Value, error)
	Truthy() (bool, error)
	Call(ctx context.Context, arg Value) (Value, error)
}

// NumValue represents an integer value
type NumValue struct {
	Val int
}

var _ Value = NumValue{}

func (n NumValue) String() string {
	return strconv.Itoa(n.Val)
}

func (n NumValue) ToNode() Node {
	return &Num{Val: n.Val}
}

func (n NumValue) Equals(other Value) bool {
	o, ok := other.(NumValue)
	return ok && o.Val == n.Val
}

// Add does not check for overflow; sums wrap.
func (n NumValue) Add(other Value) (Value, error) {
	o, ok := other.(NumValue)
	if !ok {
		return nil, &InvalidOperandError{Op: "addition", Operand: other}
	}
	return NumValue{Val: n.Val + o.Val}, nil
}

func (n NumValue) Multiply(other Value) (Value, error) {
	o, ok := other.(NumValue)
	if !ok {
		return nil, &InvalidOperandError{Op: "multiplication", Operand: other}
	}
	return NumValue{Val: n.Val * o.Val}, nil
}

func (n NumValue) Truthy() (bool, error) {
	return false, &InvalidOperandError{Op: "condition", Operand: n}
}

func (n NumValue) Call(context.Context, Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "call", Operand: n}
}

func (n NumValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Val)
}

// BoolValue represents a boolean value
type BoolValue struct {
	Val bool
}

var _ Value = BoolValue{}

func (b BoolValue) String() string {
	if b.Val {
		return "_true"
	}
	return "_false"
}

func (b BoolValue) ToNode() Node {
	return &Bool{Val: b.Val}
}

func (b BoolValue) Equals(other Value) bool {
	o, ok := other.(BoolValue)
	return ok && o.Val == b.Val
}

func (b BoolValue) Add(Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "addition", Operand: b}
}

func (b BoolValue) Multiply(Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "multiplication", Operand: b}
}

func (b BoolValue) Truthy() (bool, error) {
	return b.Val, nil
}

func (b BoolValue) Call(context.Context, Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "call", Operand: b}
}

func (b BoolValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Val)
}

// FunctionValue is a closure: a parameter, a body, and the environment the
// body runs in when called.
type FunctionValue struct {
	Param   string
	Body    Node
	Closure Env
}

var _ Value = FunctionValue{}

func (f FunctionValue) String() string {
	return "[function]"
}

func (f FunctionValue) ToNode() Node {
	return &Fun{Param: f.Param, Body: f.Body}
}

func (f FunctionValue) Equals(other Value) bool {
	o, ok := other.(FunctionValue)
	if !ok {
		return false
	}
	return f.Param == o.Param &&
		f.Body.Equals(o.Body) &&
		envOrEmpty(f.Closure).Equals(envOrEmpty(o.Closure))
}

func (f FunctionValue) Add(Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "addition", Operand: f}
}

func (f FunctionValue) Multiply(Value) (Value, error) {
	return nil, &InvalidOperandError{Op: "multiplication", Operand: f}
}

func (f FunctionValue) Truthy() (bool, error) {
	return false, &InvalidOperandError{Op: "condition", Operand: f}
}

// Call evaluates the body with the parameter bound to arg on top of the
// closure's environment.
func (f FunctionValue) Call(ctx context.Context, arg Value) (Value, error) {
	return f.Body.Eval(ctx, envOrEmpty(f.Closure).Extend(f.Param, arg))
}

// MarshalJSON renders the function as its parameter and the canonical form
// of its body. The closure is not included.
func (f FunctionValue) MarshalJSON() ([]byte, error) {
	if f.Body == nil {
		return nil, fmt.Errorf("cannot marshal function value without a body")
	}
	return json.Marshal(struct {
		Param string `json:"param"`
		Body  string `json:"body"`
	}{f.Param, f.Body.String()})
}

func envOrEmpty(env Env) Env {
	if env == nil {
		return EmptyEnv
	}
	return env
}
