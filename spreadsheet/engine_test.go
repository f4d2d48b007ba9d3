package spreadsheet

import (
	"testing"

	"ledger/engine"
)

func mustSetCell(t *testing.T, s *Sheet, id CellID, raw string) {
	t.Helper()
	if err := s.SetCell(id, raw); err != nil {
		t.Fatalf("failed to set %s: %v", id, err)
	}
}

func wantNumber(t *testing.T, v engine.Value, want float64) {
	t.Helper()
	n, ok := v.(engine.Number)
	if !ok || n.Value != want {
		t.Errorf("expected Number(%v), got %v", want, v)
	}
}

func TestSimpleEvaluation(t *testing.T) {
	s := NewSheet("Sheet1")
	mustSetCell(t, s, "A1", "10")
	wantNumber(t, s.GetCell("A1").Value, 10)
}

func TestDependencyPropagation(t *testing.T) {
	s := NewSheet("Sheet1")

	mustSetCell(t, s, "A1", "10")
	mustSetCell(t, s, "B1", "=A1*2")

	b1 := s.GetCell("B1")
	wantNumber(t, b1.Value, 20)

	mustSetCell(t, s, "A1", "5")
	wantNumber(t, b1.Value, 10)
}

func TestChainedDependencies(t *testing.T) {
	s := NewSheet("Sheet1")

	mustSetCell(t, s, "A1", "1")
	mustSetCell(t, s, "B1", "=A1+1")
	mustSetCell(t, s, "C1", "=B1*2")

	c1 := s.GetCell("C1")
	wantNumber(t, c1.Value, 4)

	mustSetCell(t, s, "A1", "2")
	wantNumber(t, c1.Value, 6)
}

func TestRangeCount(t *testing.T) {
	s := NewSheet("Sheet1")
	mustSetCell(t, s, "A1", "1")
	mustSetCell(t, s, "A2", "2")
	mustSetCell(t, s, "A3", "3")
	mustSetCell(t, s, "B1", "=SUM(A1:A3)")

	// SUM isn't in this package's registry (it's arithmetic, not
	// statistical/text), so exercise COUNT instead.
	mustSetCell(t, s, "B2", "=COUNT(A1:A3)")
	wantNumber(t, s.GetCell("B2").Value, 3)
}

func TestLambdaOverRange(t *testing.T) {
	s := NewSheet("Sheet1")
	mustSetCell(t, s, "A1", "1")
	mustSetCell(t, s, "A2", "2")
	mustSetCell(t, s, "A3", "3")
	mustSetCell(t, s, "B1", "=REDUCE(0,A1:A3,LAMBDA(acc,x,acc+x))")
	wantNumber(t, s.GetCell("B1").Value, 6)
}

func TestCircularReferenceDoesNotHang(t *testing.T) {
	s := NewSheet("Sheet1")
	mustSetCell(t, s, "A1", "=B1+1")
	mustSetCell(t, s, "B1", "=A1+1")
	// Neither SetCell call should hang; propagateUpdates' visited set
	// bounds the walk even though A1 and B1 reference each other.
}
