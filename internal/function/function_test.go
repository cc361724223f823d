package function

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluatorShapes(t *testing.T) {
	p := Params{Scale: 2, XShift: 0, YShift: 1}
	cases := []struct {
		family Family
		t      float64
		want   float64
	}{
		{Quadratic, 3, 2*9 + 1},
		{Cubic, -2, 2*-8 + 1},
		{AbsoluteValue, -4, 2*4 + 1},
		{Logarithm, math.E, 2 + 1},
		{Exponential, 0, 2 + 1},
		{PowerOfTwo, 3, 2*8 + 1},
		{Reciprocal, 4, 0.5},
		{SquareRoot, 9, 2*3 + 1},
		{SquareRoot, -9, 1},
		{CubeRoot, -27, -6},
	}
	for _, tc := range cases {
		t.Run(tc.family.String(), func(t *testing.T) {
			fn, err := Resolve(tc.family, p)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got := fn.Eval(tc.t); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("eval(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestLogarithmAtZeroIsFinite(t *testing.T) {
	fn, err := Resolve(Logarithm, Params{Scale: 1})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, x := range []float64{0, -1} {
		got := fn.Eval(x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("eval(%v) = %v, want finite", x, got)
		}
		if got != Epsilon {
			t.Fatalf("eval(%v) = %v, want scale*eps+k = %v", x, got, Epsilon)
		}
	}
}

func TestResolveRejectsInvalidParameters(t *testing.T) {
	if _, err := Resolve(Quadratic, Params{Scale: 0}); !errors.Is(err, ErrZeroScale) {
		t.Fatalf("zero scale: got %v, want ErrZeroScale", err)
	}
	if _, err := Resolve(Unknown, Params{Scale: 1}); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("unknown family: got %v, want ErrUnknownFamily", err)
	}
	if _, err := Resolve(Cubic, Params{Scale: math.Inf(1)}); err == nil {
		t.Fatal("expected non-finite scale to be rejected")
	}
}

func TestParseFamilyAcceptsAllSpellings(t *testing.T) {
	cases := map[string]Family{
		"quadratic":      Quadratic,
		"x^{3}":          Cubic,
		`\left|x\right|`: AbsoluteValue,
		"Logarithm":      Logarithm,
		" exp ":          Exponential,
		"2^{x}":          PowerOfTwo,
		"Rational":       Reciprocal,
		"Square Root":    SquareRoot,
		`\sqrt[3]{x}`:    CubeRoot,
	}
	for in, want := range cases {
		got, err := ParseFamily(in)
		if err != nil {
			t.Fatalf("ParseFamily(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFamily(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseFamily("sin"); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
}

func TestLookupPolynomialExponent(t *testing.T) {
	if f, err := Lookup("Polynomial", 2); err != nil || f != Quadratic {
		t.Fatalf("Polynomial^2 = %v, %v", f, err)
	}
	if f, err := Lookup("polynomial", 3); err != nil || f != Cubic {
		t.Fatalf("Polynomial^3 = %v, %v", f, err)
	}
	if _, err := Lookup("Polynomial", 4); !errors.Is(err, ErrUnsupportedExponent) {
		t.Fatalf("Polynomial^4: got %v, want ErrUnsupportedExponent", err)
	}
}

func TestLaTeXRoundTripsThroughParse(t *testing.T) {
	for _, f := range Families {
		got, err := ParseFamily(f.LaTeX())
		if err != nil || got != f {
			t.Fatalf("ParseFamily(%q) = %v, %v; want %v", f.LaTeX(), got, err, f)
		}
	}
}

func TestPoleOnlyForReciprocal(t *testing.T) {
	for _, f := range Families {
		_, ok := f.Pole()
		if ok != (f == Reciprocal) {
			t.Fatalf("%v: pole=%v", f, ok)
		}
	}
}
