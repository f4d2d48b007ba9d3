package engine

import "testing"

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want float64
		ok   bool
	}{
		{"number", Number{Value: 4.5}, 4.5, true},
		{"numeric text", Text{Value: "  12  "}, 12, true},
		{"non-numeric text", Text{Value: "abc"}, 0, false},
		{"empty text", Text{Value: ""}, 0, false},
		{"true", Boolean{Value: true}, 1, true},
		{"false", Boolean{Value: false}, 0, true},
		{"empty", Empty(), 0, true},
		{"error", NewError(ErrValue), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ToNumber(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{Number{Value: 3}, "3"},
		{Text{Value: "hi"}, "hi"},
		{Boolean{Value: true}, "TRUE"},
		{Empty(), ""},
		{NewError(ErrDiv0), "#DIV/0!"},
	}
	for _, tt := range tests {
		if got := ToText(tt.in); got != tt.want {
			t.Errorf("ToText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		in   Value
		want bool
	}{
		{Number{Value: 0}, false},
		{Number{Value: 1}, true},
		{Boolean{Value: true}, true},
		{Boolean{Value: false}, false},
		{Text{Value: ""}, false},
		{Text{Value: "1"}, true},
		{Text{Value: "abc"}, false},
		{Empty(), false},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.in); got != tt.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRangePanicsOnJagged(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on jagged range")
		}
	}()
	NewRange([][]Value{{Number{Value: 1}}, {Number{Value: 1}, Number{Value: 2}}})
}

func TestRangeFlat(t *testing.T) {
	r := NewRange([][]Value{{Number{Value: 1}, Number{Value: 2}}, {Number{Value: 3}, Number{Value: 4}}})
	flat := r.Flat()
	if len(flat) != 4 {
		t.Fatalf("expected 4 flattened cells, got %d", len(flat))
	}
	want := []float64{1, 2, 3, 4}
	for i, v := range flat {
		n := v.(Number)
		if n.Value != want[i] {
			t.Errorf("flat[%d] = %v, want %v", i, n.Value, want[i])
		}
	}
}

func TestToMatrixScalar(t *testing.T) {
	m := ToMatrix(Number{Value: 5})
	if len(m.Rows) != 1 || len(m.Rows[0]) != 1 {
		t.Fatalf("expected 1x1 matrix, got %v", m.Rows)
	}
}
