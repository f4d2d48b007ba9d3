package engine

import "testing"

func TestFormatFixedEdgeCases(t *testing.T) {
	tests := []struct {
		n      float64
		format string
		want   string
	}{
		{-1234.5, "#,##0.00", "-1,234.50"},
		{0, "0.00", "0.00"},
		{3, "#.##", "3"},
		{3.14159, "#.##", "3.14"},
		{7, "000", "007"},
	}
	for _, tt := range tests {
		got := formatFixed(tt.n, tt.format)
		if got != tt.want {
			t.Errorf("formatFixed(%v, %q) = %q, want %q", tt.n, tt.format, got, tt.want)
		}
	}
}

func TestFormatNumberNegativePercent(t *testing.T) {
	got, ok := formatNumber(-0.5, "0%")
	if !ok || got != "-50%" {
		t.Errorf("formatNumber(-0.5, \"0%%\") = %q, %v, want -50%%", got, ok)
	}
}

func TestGroupThousandsShortInput(t *testing.T) {
	if got := groupThousands("42"); got != "42" {
		t.Errorf("groupThousands(42) = %q, want 42", got)
	}
	if got := groupThousands("1234567"); got != "1,234,567" {
		t.Errorf("groupThousands(1234567) = %q, want 1,234,567", got)
	}
}
