package msd

import (
	"iter"
	"strings"
)

// Env is a persistent chain of name/value bindings. Extending an Env never
// modifies it, so environments can be shared freely between closures and
// repeated evaluations.
type Env interface {
	// Lookup returns the most recently bound value for name.
	Lookup(name string) (Value, bool)

	// Extend returns a new Env binding name on top of the receiver.
	Extend(name string, val Value) Env

	// Equals reports whether both chains hold the same name/value pairs in
	// the same order.
	Equals(Env) bool

	// Bindings yields every binding, nearest first, shadowed ones included.
	Bindings() iter.Seq2[string, Value]

	String() string
}

// EmptyEnv holds no bindings. Top-level evaluation starts here.
var EmptyEnv Env = emptyEnv{}

type emptyEnv struct{}

func (emptyEnv) Lookup(string) (Value, bool) { return nil, false }

func (e emptyEnv) Extend(name string, val Value) Env {
	return &extendedEnv{name: name, val: val, parent: e}
}

func (emptyEnv) Equals(other Env) bool {
	_, ok := other.(emptyEnv)
	return ok
}

func (emptyEnv) Bindings() iter.Seq2[string, Value] {
	return func(func(string, Value) bool) {}
}

func (emptyEnv) String() string { return "{}" }

type extendedEnv struct {
	name   string
	val    Value
	parent Env
}

func (e *extendedEnv) Lookup(name string) (Value, bool) {
	var env Env = e
	for {
		ext, ok := env.(*extendedEnv)
		if !ok {
			return nil, false
		}
		if ext.name == name {
			return ext.val, true
		}
		env = ext.parent
	}
}

func (e *extendedEnv) Extend(name string, val Value) Env {
	return &extendedEnv{name: name, val: val, parent: e}
}

func (e *extendedEnv) Equals(other Env) bool {
	o, ok := other.(*extendedEnv)
	if !ok {
		return false
	}
	if e == o {
		return true
	}
	return e.name == o.name &&
		e.val.Equals(o.val) &&
		e.parent.Equals(o.parent)
}

func (e *extendedEnv) Bindings() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		var env Env = e
		for {
			ext, ok := env.(*extendedEnv)
			if !ok {
				return
			}
			if !yield(ext.name, ext.val) {
				return
			}
			env = ext.parent
		}
	}
}

func (e *extendedEnv) String() string {
	var parts []string
	for name, val := range e.Bindings() {
		parts = append(parts, name+"="+val.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
