package engine

import "testing"

func TestCountFamily(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1},
		"A2": Text{Value: "x"},
		"A3": Empty(),
	})
	if got := evalFormula(t, "COUNT(A1:A3)", ctx); got.(Number).Value != 1 {
		t.Errorf("COUNT = %v, want 1", got)
	}
	if got := evalFormula(t, "COUNTA(A1:A3)", ctx); got.(Number).Value != 2 {
		t.Errorf("COUNTA = %v, want 2", got)
	}
	if got := evalFormula(t, "COUNTBLANK(A1:A3)", ctx); got.(Number).Value != 1 {
		t.Errorf("COUNTBLANK = %v, want 1", got)
	}
}

func TestCountIfAndSumIf(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 5}, "A2": Number{Value: 10}, "A3": Number{Value: 15},
	})
	if got := evalFormula(t, `COUNTIF(A1:A3,">5")`, ctx); got.(Number).Value != 2 {
		t.Errorf("COUNTIF = %v, want 2", got)
	}
	if got := evalFormula(t, `SUMIF(A1:A3,">5")`, ctx); got.(Number).Value != 25 {
		t.Errorf("SUMIF = %v, want 25", got)
	}
	if got := evalFormula(t, `AVERAGEIF(A1:A3,">=10")`, ctx); got.(Number).Value != 12.5 {
		t.Errorf("AVERAGEIF = %v, want 12.5", got)
	}
}

func TestMedianModeLargeSmallRank(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 2},
	})
	if got := evalFormula(t, "MEDIAN(A1:A3)", ctx); got.(Number).Value != 2 {
		t.Errorf("MEDIAN = %v, want 2", got)
	}
	if got := evalFormula(t, "MODE.SNGL(A1:A3)", ctx); got.(Number).Value != 2 {
		t.Errorf("MODE.SNGL = %v, want 2", got)
	}
	if got := evalFormula(t, "LARGE(A1:A3,1)", ctx); got.(Number).Value != 2 {
		t.Errorf("LARGE = %v, want 2", got)
	}
	if got := evalFormula(t, "SMALL(A1:A3,1)", ctx); got.(Number).Value != 1 {
		t.Errorf("SMALL = %v, want 1", got)
	}
	if got := evalFormula(t, "RANK.EQ(2,A1:A3)", ctx); got.(Number).Value != 1 {
		t.Errorf("RANK.EQ = %v, want 1", got)
	}
}

func TestModeWithNoRepeatsIsNA(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2}, "A3": Number{Value: 3},
	})
	got := evalFormula(t, "MODE.SNGL(A1:A3)", ctx)
	if !IsError(got) || got.(ErrorValue).Code != ErrNA {
		t.Errorf("MODE.SNGL with no repeats = %v, want #N/A", got)
	}
}

func TestSumIfsRequiresAllCriteria(t *testing.T) {
	ctx := newTestContext(map[string]Value{
		"A1": Number{Value: 1}, "A2": Number{Value: 2},
		"B1": Text{Value: "yes"}, "B2": Text{Value: "no"},
	})
	got := evalFormula(t, `SUMIFS(A1:A2,B1:B2,"yes")`, ctx)
	if n, ok := got.(Number); !ok || n.Value != 1 {
		t.Errorf("SUMIFS = %v, want 1", got)
	}
}
