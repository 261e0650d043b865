package msd

import (
	"context"
	"fmt"
)

// BinaryOperator provides common functionality for binary operators
type BinaryOperator struct {
	Left  Node
	Right Node
	Loc   *SourceLocation
}

func (b *BinaryOperator) GetSourceLocation() *SourceLocation { return b.Loc }

func (b *BinaryOperator) walk(self Node, fn func(Node) bool) {
	if !fn(self) {
		return
	}
	b.Left.Walk(fn)
	b.Right.Walk(fn)
}

func (b *BinaryOperator) format(op string) string {
	return fmt.Sprintf("(%s%s%s)", b.Left, op, b.Right)
}

func (b *BinaryOperator) equals(o *BinaryOperator) bool {
	return b.Left.Equals(o.Left) && b.Right.Equals(o.Right)
}

// operands evaluates the left side fully before the right side.
func (b *BinaryOperator) operands(ctx context.Context, env Env) (Value, Value, error) {
	lv, err := b.Left.Eval(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	rv, err := b.Right.Eval(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	return lv, rv, nil
}

type Add struct {
	BinaryOperator
}

var _ Node = (*Add)(nil)

func NewAdd(left, right Node, loc *SourceLocation) *Add {
	return &Add{BinaryOperator{Left: left, Right: right, Loc: loc}}
}

func (a *Add) String() string { return a.format("+") }

func (a *Add) Walk(fn func(Node) bool) { a.walk(a, fn) }

func (a *Add) Equals(other Node) bool {
	o, ok := other.(*Add)
	return ok && a.equals(&o.BinaryOperator)
}

func (a *Add) Eval(ctx context.Context, env Env) (Value, error) {
	return WithEvalErrorHandling(ctx, a, func() (Value, error) {
		lv, rv, err := a.operands(ctx, env)
		if err != nil {
			return nil, err
		}
		return lv.Add(rv)
	})
}

type Mult struct {
	BinaryOperator
}

var _ Node = (*Mult)(nil)

func NewMult(left, right Node, loc *SourceLocation) *Mult {
	return &Mult{BinaryOperator{Left: left, Right: right, Loc: loc}}
}

func (m *Mult) String() string { return m.format("*") }

func (m *Mult) Walk(fn func(Node) bool) { m.walk(m, fn) }

func (m *Mult) Equals(other Node) bool {
	o, ok := other.(*Mult)
	return ok && m.equals(&o.BinaryOperator)
}

func (m *Mult) Eval(ctx context.Context, env Env) (Value, error) {
	return WithEvalErrorHandling(ctx, m, func() (Value, error) {
		lv, rv, err := m.operands(ctx, env)
		if err != nil {
			return nil, err
		}
		return lv.Multiply(rv)
	})
}

// Eq compares two values. Values of different kinds are unequal; it never
// fails on its own.
type Eq struct {
	BinaryOperator
}

var _ Node = (*Eq)(nil)

func NewEq(left, right Node, loc *SourceLocation) *Eq {
	return &Eq{BinaryOperator{Left: left, Right: right, Loc: loc}}
}

func (e *Eq) String() string { return e.format("==") }

func (e *Eq) Walk(fn func(Node) bool) { e.walk(e, fn) }

func (e *Eq) Equals(other Node) bool {
	o, ok := other.(*Eq)
	return ok && e.equals(&o.BinaryOperator)
}

func (e *Eq) Eval(ctx context.Context, env Env) (Value, error) {
	lv, rv, err := e.operands(ctx, env)
	if err != nil {
		return nil, err
	}
	return BoolValue{Val: lv.Equals(rv)}, nil
}
