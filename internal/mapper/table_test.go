package mapper

import (
	"math"
	"testing"
)

func TestTableEndpointsAndInterpolation(t *testing.T) {
	tab := NewTable(func(x float64) float64 { return 3*x + 1 }, 5)
	if tab.Len() != 5 {
		t.Fatalf("len = %d", tab.Len())
	}
	cases := map[float64]float64{-1: -2, 1: 4, 0: 1, 0.25: 1.75, -3: -2, 3: 4}
	for x, want := range cases {
		if got := tab.Lookup(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("Lookup(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestTableEvenGridSkipsZero(t *testing.T) {
	var sawZero bool
	NewTable(func(x float64) float64 {
		if x == 0 {
			sawZero = true
		}
		return x
	}, DefaultTableSize)
	if sawZero {
		t.Fatal("even-sized table sampled x=0")
	}
}

func TestTableDefaultsSize(t *testing.T) {
	if got := NewTable(func(x float64) float64 { return x }, 0).Len(); got != DefaultTableSize {
		t.Fatalf("len = %d, want %d", got, DefaultTableSize)
	}
}
