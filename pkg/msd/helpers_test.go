package msd

// Shorthand constructors for building trees in tests.

func num(n int) Node            { return &Num{Val: n} }
func boolean(b bool) Node       { return &Bool{Val: b} }
func vr(name string) Node       { return &Var{Name: name} }
func add(l, r Node) Node        { return NewAdd(l, r, nil) }
func mult(l, r Node) Node       { return NewMult(l, r, nil) }
func eq(l, r Node) Node         { return NewEq(l, r, nil) }
func call(f, arg Node) Node     { return &Call{Callee: f, Arg: arg} }
func fun(p string, b Node) Node { return &Fun{Param: p, Body: b} }

func let(name string, bound, body Node) Node {
	return &Let{Name: name, Bound: bound, Body: body}
}

func ifx(c, t, e Node) Node {
	return &If{Cond: c, Then: t, Else: e}
}
