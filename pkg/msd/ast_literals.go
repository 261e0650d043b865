package msd

import (
	"context"
	"strconv"
)

// Num represents an integer literal
type Num struct {
	Val int
	Loc *SourceLocation
}

var _ Node = (*Num)(nil)

func (n *Num) GetSourceLocation() *SourceLocation { return n.Loc }

func (n *Num) String() string { return strconv.Itoa(n.Val) }

func (n *Num) Eval(context.Context, Env) (Value, error) {
	return NumValue{Val: n.Val}, nil
}

func (n *Num) Equals(other Node) bool {
	o, ok := other.(*Num)
	return ok && o.Val == n.Val
}

func (n *Num) Walk(fn func(Node) bool) { fn(n) }

// Bool represents _true or _false
type Bool struct {
	Val bool
	Loc *SourceLocation
}

var _ Node = (*Bool)(nil)

func (b *Bool) GetSourceLocation() *SourceLocation { return b.Loc }

func (b *Bool) String() string {
	if b.Val {
		return "_true"
	}
	return "_false"
}

func (b *Bool) Eval(context.Context, Env) (Value, error) {
	return BoolValue{Val: b.Val}, nil
}

func (b *Bool) Equals(other Node) bool {
	o, ok := other.(*Bool)
	return ok && o.Val == b.Val
}

func (b *Bool) Walk(fn func(Node) bool) { fn(b) }

// Var is a reference to a bound name
type Var struct {
	Name string
	Loc  *SourceLocation
}

var _ Node = (*Var)(nil)

func (v *Var) GetSourceLocation() *SourceLocation { return v.Loc }

func (v *Var) String() string { return v.Name }

func (v *Var) Eval(ctx context.Context, env Env) (Value, error) {
	return WithEvalErrorHandling(ctx, v, func() (Value, error) {
		val, found := env.Lookup(v.Name)
		if !found {
			return nil, &UnboundVariableError{Name: v.Name}
		}
		return val, nil
	})
}

func (v *Var) Equals(other Node) bool {
	o, ok := other.(*Var)
	return ok && o.Name == v.Name
}

func (v *Var) Walk(fn func(Node) bool) { fn(v) }
