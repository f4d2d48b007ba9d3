package engine

import "ledger/ast"

// RegisteredFunction is the uniform contract every name the registry
// resolves satisfies (spec.md §4.2, component C5): arity bounds, a
// laziness flag, and an invocation path matching that flag. The call-node
// evaluator validates arity and branches on IsLazy before ever touching
// the function body.
type RegisteredFunction interface {
	Name() string
	MinArgs() int
	MaxArgs() int // -1 means unbounded
	IsLazy() bool
	// CallEager is used when IsLazy() is false: args have already been
	// evaluated and any Error among them has already short-circuited the
	// call before this is reached.
	CallEager(ctx Context, args []Value) Value
	// CallLazy is used when IsLazy() is true: argNodes are raw, unevaluated
	// expression nodes and the function decides if/when/how often to
	// evaluate each one.
	CallLazy(ctx Context, argNodes []ast.Expression) Value
}

// Builtin is the concrete RegisteredFunction every function in this
// package's families is built from. Only one of Eager/LazyFn is set,
// matching the function's Lazy flag.
type Builtin struct {
	FnName string
	Min    int
	Max    int
	Lazy   bool
	Eager  func(ctx Context, args []Value) Value
	LazyFn func(ctx Context, argNodes []ast.Expression) Value
}

func (b *Builtin) Name() string    { return b.FnName }
func (b *Builtin) MinArgs() int    { return b.Min }
func (b *Builtin) MaxArgs() int    { return b.Max }
func (b *Builtin) IsLazy() bool    { return b.Lazy }

func (b *Builtin) CallEager(ctx Context, args []Value) Value {
	return b.Eager(ctx, args)
}

func (b *Builtin) CallLazy(ctx Context, argNodes []ast.Expression) Value {
	return b.LazyFn(ctx, argNodes)
}

// checkArity returns a #VALUE! error Value (and true) when argc is
// outside [min,max]; max<0 means unbounded, per spec.md §4.2.
func checkArity(fn RegisteredFunction, argc int) (Value, bool) {
	if argc < fn.MinArgs() || (fn.MaxArgs() >= 0 && argc > fn.MaxArgs()) {
		return NewError(ErrValue), true
	}
	return nil, false
}
