package engine

import "ledger/ast"

// lambdaFunction is the Function Value variant (spec.md §3): a callable
// closure carrying its parameter names, its body, and the context that was
// live at the point LAMBDA constructed it. The captured context must
// outlive every invocation; since Go's garbage collector keeps anything a
// live closure references reachable, capturing it by reference (as here)
// satisfies that without any extra bookkeeping (spec.md §9).
type lambdaFunction struct {
	params  []string
	body    ast.Expression
	capture Context
}

func (l *lambdaFunction) Type() ValueType  { return TypeFunc }
func (l *lambdaFunction) Inspect() string  { return "#LAMBDA" }
func (l *lambdaFunction) Params() []string { return l.params }

func (l *lambdaFunction) Invoke(args []Value) Value {
	if len(args) > len(l.params) {
		return NewError(ErrValue)
	}
	scope := NewScope(l.capture)
	for i, p := range l.params {
		if i < len(args) {
			scope.Bind(p, args[i])
		} else {
			scope.Bind(p, Omitted)
		}
	}
	*scope.depth++
	defer func() { *scope.depth-- }()
	if *scope.depth > maxRecursionDepth {
		return NewError(ErrNum)
	}
	return Evaluate(l.body, scope)
}
