package main

import (
	"testing"

	"github.com/cbegin/graphsynth-go"
)

func TestParseEquation(t *testing.T) {
	cases := []struct {
		in   string
		want graphsynth.Equation
		gain float64 // -1 when unset
	}{
		{"quadratic", graphsynth.Equation{Family: "quadratic", Scale: 1}, -1},
		{"ln:2,-3,1.5", graphsynth.Equation{Family: "ln", Scale: 2, XShift: -3, YShift: 1.5}, -1},
		{"exp:1,,4,0.5", graphsynth.Equation{Family: "exp", Scale: 1, YShift: 4}, 0.5},
		{"abs:1,0,0,0", graphsynth.Equation{Family: "abs", Scale: 1}, 0},
		{"poly3:-1,2,0", graphsynth.Equation{Family: "Polynomial", Exponent: 3, Scale: -1, XShift: 2}, -1},
		{"Square Root:1,0,0", graphsynth.Equation{Family: "Square Root", Scale: 1}, -1},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseEquation(tc.in)
			if err != nil {
				t.Fatalf("parseEquation: %v", err)
			}
			switch {
			case tc.gain < 0 && got.Gain != nil:
				t.Fatalf("gain = %v, want unset", *got.Gain)
			case tc.gain >= 0 && (got.Gain == nil || *got.Gain != tc.gain):
				t.Fatalf("gain = %v, want %v", got.Gain, tc.gain)
			}
			got.Gain = nil
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseEquationErrors(t *testing.T) {
	for _, in := range []string{"", ":1,2", "ln:1,2,3,4,5", "ln:abc", "polyx:1"} {
		if _, err := parseEquation(in); err == nil {
			t.Errorf("parseEquation(%q) succeeded", in)
		}
	}
}

func TestEquationListCollects(t *testing.T) {
	var l equationList
	for _, v := range []string{"cubic:1,0,0", "abs:2,1,0"} {
		if err := l.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if len(l) != 2 || l[1].Family != "abs" || l[1].Scale != 2 {
		t.Fatalf("list = %+v", l)
	}
	if l.String() != "cubic:1,0,0 abs:2,1,0" {
		t.Fatalf("String = %q", l.String())
	}
}
