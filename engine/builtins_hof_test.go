package engine

import "testing"

func TestMapOverRange(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 3},
	})
	got := evalFormula(t, "MAP(A1:A3,LAMBDA(x,x*10))", ctx)
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("MAP result is not a Range: %v", got)
	}
	want := []float64{10, 20, 30}
	for i, v := range r.Flat() {
		if n := v.(Number); n.Value != want[i] {
			t.Errorf("MAP[%d] = %v, want %v", i, n.Value, want[i])
		}
	}
}

func TestReduceOverRange(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 3},
	})
	got := evalFormula(t, "REDUCE(0,A1:A3,LAMBDA(acc,x,acc+x))", ctx)
	if n, ok := got.(Number); !ok || n.Value != 6 {
		t.Errorf("REDUCE = %v, want 6", got)
	}
}

func TestScanAccumulatesEachStep(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 3},
	})
	got := evalFormula(t, "SCAN(0,A1:A3,LAMBDA(acc,x,acc+x))", ctx)
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("SCAN result is not a Range: %v", got)
	}
	want := []float64{1, 3, 6}
	for i, v := range r.Flat() {
		if n := v.(Number); n.Value != want[i] {
			t.Errorf("SCAN[%d] = %v, want %v", i, n.Value, want[i])
		}
	}
}

func TestMakeArrayBuildsByIndex(t *testing.T) {
	ctx := newTestContext(nil)
	got := evalFormula(t, "MAKEARRAY(2,2,LAMBDA(r,c,r*10+c))", ctx)
	r, ok := got.(Range)
	if !ok {
		t.Fatalf("MAKEARRAY result is not a Range: %v", got)
	}
	if r.Rows[0][0].(Number).Value != 11 || r.Rows[1][1].(Number).Value != 22 {
		t.Errorf("MAKEARRAY = %v", r.Rows)
	}
}

func TestIsOmittedOnUnboundLambdaParam(t *testing.T) {
	ctx := newTestContext(nil)
	got := evalFormula(t, "LAMBDA(x,y,ISOMITTED(y))(1)", ctx)
	if b, ok := got.(Boolean); !ok || b.Value != true {
		t.Errorf("ISOMITTED(y) = %v, want TRUE", got)
	}
}

func TestLambdaArityMismatch(t *testing.T) {
	ctx := newTestContext(nil)
	got := evalFormula(t, "LAMBDA(x,x+1)(1,2)", ctx)
	if !IsError(got) {
		t.Errorf("LAMBDA with too many args = %v, want error", got)
	}
}

func TestFactorialViaReduce(t *testing.T) {
	// 4! computed by folding multiplication over A1:A4 with REDUCE.
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 3}, "A4": Number{Value: 4},
	})
	got := evalFormula(t, "REDUCE(1,A1:A4,LAMBDA(acc,x,acc*x))", ctx)
	if n, ok := got.(Number); !ok || n.Value != 24 {
		t.Errorf("factorial-by-reduce = %v, want 24", got)
	}
}
