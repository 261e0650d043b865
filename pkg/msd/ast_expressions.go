package msd

import (
	"context"
	"fmt"
	"log/slog"
)

// Let binds Name to the value of Bound while evaluating Body. Bound is
// evaluated in the enclosing environment, so it cannot refer to Name.
type Let struct {
	Name  string
	Bound Node
	Body  Node
	Loc   *SourceLocation

	NameLoc *SourceLocation
}

var _ Node = (*Let)(nil)

func (l *Let) GetSourceLocation() *SourceLocation { return l.Loc }

func (l *Let) String() string {
	return fmt.Sprintf("(_let %s=%s _in %s)", l.Name, l.Bound, l.Body)
}

func (l *Let) Eval(ctx context.Context, env Env) (Value, error) {
	val, err := l.Bound.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	return l.Body.Eval(ctx, env.Extend(l.Name, val))
}

func (l *Let) Equals(other Node) bool {
	o, ok := other.(*Let)
	return ok &&
		l.Name == o.Name &&
		l.Bound.Equals(o.Bound) &&
		l.Body.Equals(o.Body)
}

func (l *Let) Walk(fn func(Node) bool) {
	if !fn(l) {
		return
	}
	l.Bound.Walk(fn)
	l.Body.Walk(fn)
}

// If evaluates Then or Else depending on Cond, which must be a boolean.
type If struct {
	Cond Node
	Then Node
	Else Node
	Loc  *SourceLocation
}

var _ Node = (*If)(nil)

func (i *If) GetSourceLocation() *SourceLocation { return i.Loc }

func (i *If) String() string {
	return fmt.Sprintf("(_if %s _then %s _else %s)", i.Cond, i.Then, i.Else)
}

func (i *If) Eval(ctx context.Context, env Env) (Value, error) {
	return WithEvalErrorHandling(ctx, i, func() (Value, error) {
		cond, err := i.Cond.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		ok, err := cond.Truthy()
		if err != nil {
			return nil, err
		}
		if ok {
			return i.Then.Eval(ctx, env)
		}
		return i.Else.Eval(ctx, env)
	})
}

func (i *If) Equals(other Node) bool {
	o, ok := other.(*If)
	return ok &&
		i.Cond.Equals(o.Cond) &&
		i.Then.Equals(o.Then) &&
		i.Else.Equals(o.Else)
}

func (i *If) Walk(fn func(Node) bool) {
	if !fn(i) {
		return
	}
	i.Cond.Walk(fn)
	i.Then.Walk(fn)
	i.Else.Walk(fn)
}

// Fun is a single-parameter function literal.
type Fun struct {
	Param string
	Body  Node
	Loc   *SourceLocation

	ParamLoc *SourceLocation
}

var _ Node = (*Fun)(nil)

func (f *Fun) GetSourceLocation() *SourceLocation { return f.Loc }

func (f *Fun) String() string {
	return fmt.Sprintf("(_fun (%s) %s)", f.Param, f.Body)
}

// Eval captures EmptyEnv rather than env: a function body sees its parameter
// and nothing else, so closures over outer _let bindings fail with a free
// variable error.
//
// TODO: capture env instead once outputs no longer have to match the
// reference msdscript binaries under difftest.
func (f *Fun) Eval(context.Context, Env) (Value, error) {
	return FunctionValue{
		Param:   f.Param,
		Body:    f.Body,
		Closure: EmptyEnv,
	}, nil
}

func (f *Fun) Equals(other Node) bool {
	o, ok := other.(*Fun)
	return ok && f.Param == o.Param && f.Body.Equals(o.Body)
}

func (f *Fun) Walk(fn func(Node) bool) {
	if !fn(f) {
		return
	}
	f.Body.Walk(fn)
}

// Call applies Callee to Arg.
type Call struct {
	Callee Node
	Arg    Node
	Loc    *SourceLocation
}

var _ Node = (*Call)(nil)

func (c *Call) GetSourceLocation() *SourceLocation { return c.Loc }

func (c *Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Callee, c.Arg)
}

func (c *Call) Eval(ctx context.Context, env Env) (Value, error) {
	return WithEvalErrorHandling(ctx, c, func() (Value, error) {
		callee, err := c.Callee.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		arg, err := c.Arg.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "calling function", "callee", callee, "arg", arg)
		return callee.Call(ctx, arg)
	})
}

func (c *Call) Equals(other Node) bool {
	o, ok := other.(*Call)
	return ok && c.Callee.Equals(o.Callee) && c.Arg.Equals(o.Arg)
}

func (c *Call) Walk(fn func(Node) bool) {
	if !fn(c) {
		return
	}
	c.Callee.Walk(fn)
	c.Arg.Walk(fn)
}
