package engine

import (
	"ledger/ast"
)

// maxRecursionDepth bounds LAMBDA self-recursion. spec.md §5/§9 leaves the
// bound to the implementation; 256 frames matches the teacher's own
// convention for guarding against stack exhaustion in user code
// (see interpreter/debug_controller.go's frame bookkeeping) without being
// so low that ordinary recursive formulas trip it.
const maxRecursionDepth = 256

// Evaluate is the single evaluation capability spec.md's component C2
// asks an expression node to expose. Nodes themselves stay inert data
// (ledger/ast); this is the dispatcher that supplies the capability,
// mirroring the teacher's own Evaluator.Eval/evalNode split.
func Evaluate(node ast.Expression, ctx Context) Value {
	if ctx.IsCancelled() {
		return NewError(ErrNA)
	}
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return Number{Value: n.Value}
	case *ast.StringLiteral:
		return Text{Value: n.Value}
	case *ast.BooleanLiteral:
		return Boolean{Value: n.Value}
	case *ast.NameNode:
		return evalName(n, ctx)
	case *ast.CellRefNode:
		return ctx.GetCellValue(CellAddr(n.Ref))
	case *ast.RangeRefNode:
		return ctx.GetRangeValues(RangeAddr{From: CellAddr(n.From), To: CellAddr(n.To)})
	case *ast.PrefixNode:
		return evalPrefix(n, ctx)
	case *ast.InfixNode:
		return evalInfix(n, ctx)
	case *ast.CallNode:
		return evalCall(n, ctx)
	default:
		return NewError(ErrValue)
	}
}

func evalName(n *ast.NameNode, ctx Context) Value {
	if v, ok := ctx.GetVariable(n.Name); ok {
		return v
	}
	return NewError(ErrName)
}

func evalPrefix(n *ast.PrefixNode, ctx Context) Value {
	right := Evaluate(n.Right, ctx)
	if IsError(right) {
		return right
	}
	switch n.Operator {
	case "-":
		f, ok := ToNumber(right)
		if !ok {
			return NewError(ErrValue)
		}
		return Number{Value: -f}
	default:
		return NewError(ErrValue)
	}
}

func evalInfix(n *ast.InfixNode, ctx Context) Value {
	left := Evaluate(n.Left, ctx)
	if IsError(left) {
		return left
	}
	right := Evaluate(n.Right, ctx)
	if IsError(right) {
		return right
	}

	if n.Operator == "&" {
		return Text{Value: ToText(left) + ToText(right)}
	}

	switch n.Operator {
	case "=", "<>":
		eq := valuesEqual(left, right)
		if n.Operator == "<>" {
			eq = !eq
		}
		return Boolean{Value: eq}
	}

	lf, lok := ToNumber(left)
	rf, rok := ToNumber(right)
	if !lok || !rok {
		return NewError(ErrValue)
	}
	switch n.Operator {
	case "+":
		return Number{Value: lf + rf}
	case "-":
		return Number{Value: lf - rf}
	case "*":
		return Number{Value: lf * rf}
	case "/":
		if rf == 0 {
			return NewError(ErrDiv0)
		}
		return Number{Value: lf / rf}
	case "^":
		return Number{Value: powFloat(lf, rf)}
	case "<":
		return Boolean{Value: lf < rf}
	case "<=":
		return Boolean{Value: lf <= rf}
	case ">":
		return Boolean{Value: lf > rf}
	case ">=":
		return Boolean{Value: lf >= rf}
	default:
		return NewError(ErrValue)
	}
}

func valuesEqual(a, b Value) bool {
	if na, ok := ToNumber(a); ok {
		if nb, ok := ToNumber(b); ok {
			return na == nb
		}
	}
	return strEqualFold(ToText(a), ToText(b))
}

func evalCall(n *ast.CallNode, ctx Context) Value {
	if name, ok := n.Callee.(*ast.NameNode); ok {
		if fn, ok := ctx.GetFunction(name.Name); ok {
			return invoke(fn, ctx, n.Args)
		}
	}

	calleeVal := Evaluate(n.Callee, ctx)
	if IsError(calleeVal) {
		return calleeVal
	}
	fnVal, ok := calleeVal.(FunctionValue)
	if !ok {
		return NewError(ErrValue)
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v := Evaluate(a, ctx)
		if IsError(v) {
			return v
		}
		args[i] = v
	}
	return fnVal.Invoke(args)
}

func invoke(fn RegisteredFunction, ctx Context, argNodes []ast.Expression) Value {
	if errv, bad := checkArity(fn, len(argNodes)); bad {
		return errv
	}
	if fn.IsLazy() {
		return fn.CallLazy(ctx, argNodes)
	}
	args := make([]Value, len(argNodes))
	for i, a := range argNodes {
		v := Evaluate(a, ctx)
		if IsError(v) {
			return v
		}
		args[i] = v
	}
	return fn.CallEager(ctx, args)
}
