package engine

import "ledger/ast"

// registerHOF wires LAMBDA, LET, and the array combinators — component C9
// of spec.md §4.3. Every one of these except ISOMITTED (which is eager)
// is lazy: each controls its own
// evaluation order, which is precisely why LAMBDA/LET can introduce
// bindings and MAP/REDUCE/SCAN/MAKEARRAY/BYCOL/BYROW can short-circuit on
// the first Error without the engine pre-evaluating their array argument.
func registerHOF(r *Registry) {
	r.Register(&Builtin{FnName: "LAMBDA", Min: 1, Max: -1, Lazy: true, LazyFn: callLambda})
	r.Register(&Builtin{FnName: "LET", Min: 3, Max: -1, Lazy: true, LazyFn: callLet})
	r.Register(&Builtin{FnName: "MAP", Min: 2, Max: 2, Lazy: true, LazyFn: callMap})
	r.Register(&Builtin{FnName: "REDUCE", Min: 3, Max: 3, Lazy: true, LazyFn: callReduce})
	r.Register(&Builtin{FnName: "SCAN", Min: 3, Max: 3, Lazy: true, LazyFn: callScan})
	r.Register(&Builtin{FnName: "MAKEARRAY", Min: 3, Max: 3, Lazy: true, LazyFn: callMakeArray})
	r.Register(&Builtin{FnName: "BYCOL", Min: 2, Max: 2, Lazy: true, LazyFn: callByCol})
	r.Register(&Builtin{FnName: "BYROW", Min: 2, Max: 2, Lazy: true, LazyFn: callByRow})
	r.Register(&Builtin{FnName: "ISOMITTED", Min: 1, Max: 1, Lazy: false, Eager: callIsOmitted})
}

func callLambda(ctx Context, args []ast.Expression) Value {
	body := args[len(args)-1]
	names := args[:len(args)-1]
	params := make([]string, 0, len(names))
	for _, n := range names {
		nameNode, ok := n.(*ast.NameNode)
		if !ok {
			return NewError(ErrValue)
		}
		params = append(params, nameNode.Name)
	}
	return &lambdaFunction{params: params, body: body, capture: ctx}
}

func callLet(ctx Context, args []ast.Expression) Value {
	if len(args)%2 != 1 {
		return NewError(ErrValue)
	}
	scope := NewScope(ctx)
	pairCount := (len(args) - 1) / 2
	for i := 0; i < pairCount; i++ {
		nameNode, ok := args[2*i].(*ast.NameNode)
		if !ok {
			return NewError(ErrValue)
		}
		val := Evaluate(args[2*i+1], scope)
		if IsError(val) {
			return val
		}
		scope.Bind(nameNode.Name, val)
	}
	return Evaluate(args[len(args)-1], scope)
}

func asFunction(v Value) (FunctionValue, bool) {
	fn, ok := v.(FunctionValue)
	return fn, ok
}

func callMap(ctx Context, args []ast.Expression) Value {
	arrVal := Evaluate(args[0], ctx)
	if IsError(arrVal) {
		return arrVal
	}
	fVal := Evaluate(args[1], ctx)
	if IsError(fVal) {
		return fVal
	}
	fn, ok := asFunction(fVal)
	if !ok {
		return NewError(ErrValue)
	}
	m := ToMatrix(arrVal)
	rows := make([][]Value, len(m.Rows))
	for i, row := range m.Rows {
		if ctx.IsCancelled() {
			return NewError(ErrNA)
		}
		out := make([]Value, len(row))
		for j, cell := range row {
			v := fn.Invoke([]Value{cell})
			if IsError(v) {
				return v
			}
			out[j] = v
		}
		rows[i] = out
	}
	return NewRange(rows)
}

func callReduce(ctx Context, args []ast.Expression) Value {
	acc := Evaluate(args[0], ctx)
	if IsError(acc) {
		return acc
	}
	arrVal := Evaluate(args[1], ctx)
	if IsError(arrVal) {
		return arrVal
	}
	fVal := Evaluate(args[2], ctx)
	if IsError(fVal) {
		return fVal
	}
	fn, ok := asFunction(fVal)
	if !ok {
		return NewError(ErrValue)
	}
	for _, cell := range ToMatrix(arrVal).Flat() {
		if ctx.IsCancelled() {
			return NewError(ErrNA)
		}
		acc = fn.Invoke([]Value{acc, cell})
		if IsError(acc) {
			return acc
		}
	}
	return acc
}

func callScan(ctx Context, args []ast.Expression) Value {
	acc := Evaluate(args[0], ctx)
	if IsError(acc) {
		return acc
	}
	arrVal := Evaluate(args[1], ctx)
	if IsError(arrVal) {
		return arrVal
	}
	fVal := Evaluate(args[2], ctx)
	if IsError(fVal) {
		return fVal
	}
	fn, ok := asFunction(fVal)
	if !ok {
		return NewError(ErrValue)
	}
	m := ToMatrix(arrVal)
	rows := make([][]Value, len(m.Rows))
	for i, row := range m.Rows {
		out := make([]Value, len(row))
		for j, cell := range row {
			if ctx.IsCancelled() {
				return NewError(ErrNA)
			}
			acc = fn.Invoke([]Value{acc, cell})
			if IsError(acc) {
				return acc
			}
			out[j] = acc
		}
		rows[i] = out
	}
	return NewRange(rows)
}

func callMakeArray(ctx Context, args []ast.Expression) Value {
	rowsVal := Evaluate(args[0], ctx)
	if IsError(rowsVal) {
		return rowsVal
	}
	colsVal := Evaluate(args[1], ctx)
	if IsError(colsVal) {
		return colsVal
	}
	rowsF, ok := ToNumber(rowsVal)
	if !ok || rowsF != float64(int(rowsF)) || int(rowsF) < 1 {
		return NewError(ErrValue)
	}
	colsF, ok := ToNumber(colsVal)
	if !ok || colsF != float64(int(colsF)) || int(colsF) < 1 {
		return NewError(ErrValue)
	}
	fVal := Evaluate(args[2], ctx)
	if IsError(fVal) {
		return fVal
	}
	fn, ok := asFunction(fVal)
	if !ok {
		return NewError(ErrValue)
	}
	nRows, nCols := int(rowsF), int(colsF)
	rows := make([][]Value, nRows)
	for r := 0; r < nRows; r++ {
		if ctx.IsCancelled() {
			return NewError(ErrNA)
		}
		row := make([]Value, nCols)
		for c := 0; c < nCols; c++ {
			v := fn.Invoke([]Value{Number{Value: float64(r + 1)}, Number{Value: float64(c + 1)}})
			if IsError(v) {
				return v
			}
			row[c] = v
		}
		rows[r] = row
	}
	return NewRange(rows)
}

func callByCol(ctx Context, args []ast.Expression) Value {
	return byColOrRow(ctx, args, true)
}

func callByRow(ctx Context, args []ast.Expression) Value {
	return byColOrRow(ctx, args, false)
}

func byColOrRow(ctx Context, args []ast.Expression, byCol bool) Value {
	arrVal := Evaluate(args[0], ctx)
	if IsError(arrVal) {
		return arrVal
	}
	fVal := Evaluate(args[1], ctx)
	if IsError(fVal) {
		return fVal
	}
	fn, ok := asFunction(fVal)
	if !ok {
		return NewError(ErrValue)
	}
	m := ToMatrix(arrVal)
	nRows, nCols := len(m.Rows), len(m.Rows[0])
	if nRows == 0 || nCols == 0 {
		return NewError(ErrValue)
	}
	if byCol {
		out := make([]Value, nCols)
		for c := 0; c < nCols; c++ {
			if ctx.IsCancelled() {
				return NewError(ErrNA)
			}
			col := make([][]Value, nRows)
			for rI := 0; rI < nRows; rI++ {
				col[rI] = []Value{m.Rows[rI][c]}
			}
			v := fn.Invoke([]Value{NewRange(col)})
			if IsError(v) {
				return v
			}
			out[c] = v
		}
		return NewRange([][]Value{out})
	}
	out := make([][]Value, nRows)
	for rI := 0; rI < nRows; rI++ {
		if ctx.IsCancelled() {
			return NewError(ErrNA)
		}
		row := append([]Value(nil), m.Rows[rI]...)
		v := fn.Invoke([]Value{NewRange([][]Value{row})})
		if IsError(v) {
			return v
		}
		out[rI] = []Value{v}
	}
	return NewRange(out)
}

func callIsOmitted(ctx Context, args []Value) Value {
	return Boolean{Value: IsOmitted(args[0])}
}
