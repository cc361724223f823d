package function

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestTimingQuadraticAtSixty(t *testing.T) {
	got := TimingFor(Quadratic, Params{Scale: 1}, -math.Sqrt(12), math.Sqrt(12), 60)
	if !approx(got.LoopDuration, 1) {
		t.Errorf("loop duration = %v, want 1", got.LoopDuration)
	}
	if !approx(got.StartOffset, 16) {
		t.Errorf("start offset = %v, want 16", got.StartOffset)
	}
	if !approx(got.DriverRate, 1) {
		t.Errorf("driver rate = %v, want 1", got.DriverRate)
	}
}

func TestTimingTable(t *testing.T) {
	p := Params{Scale: -2, XShift: 4, YShift: 1}
	xStart, xEnd := -20.0, 2.0
	bpm := 120.0
	beat := 0.5
	cases := []struct {
		family Family
		want   Timing
	}{
		{Quadratic, Timing{beat / 2, 20 * beat, beat * 2}},
		{Cubic, Timing{beat / 2, 20 * beat, beat * 2}},
		{AbsoluteValue, Timing{beat / 2, 20 * beat, beat * 2}},
		{Logarithm, Timing{12 * beat, 20 * beat, 2.0 / 12}},
		{SquareRoot, Timing{12 * beat, 20 * beat, 2.0 / 12}},
		{Exponential, Timing{22 * beat, 0, 120.0 / (60 * 32)}},
		{Reciprocal, Timing{22 * beat, 0, 120.0 / (60 * 32)}},
		{PowerOfTwo, Timing{22 * beat, 0, 2.0 / 22}},
		{CubeRoot, Timing{32 * beat, 0, 120.0 / (60 * 32)}},
	}
	for _, tc := range cases {
		t.Run(tc.family.String(), func(t *testing.T) {
			got := TimingFor(tc.family, p, xStart, xEnd, bpm)
			if !approx(got.LoopDuration, tc.want.LoopDuration) ||
				!approx(got.StartOffset, tc.want.StartOffset) ||
				!approx(got.DriverRate, tc.want.DriverRate) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestTimingScalesWithBeat(t *testing.T) {
	p := Params{Scale: 1.5, XShift: -3, YShift: 2}
	for _, f := range Families {
		for _, bpm := range []float64{40, 60, 97, 120} {
			slow := TimingFor(f, p, -10, 5, bpm)
			fast := TimingFor(f, p, -10, 5, bpm*2)
			if !approx(fast.LoopDuration, slow.LoopDuration/2) {
				t.Fatalf("%v @%v: loop %v -> %v, want halved", f, bpm, slow.LoopDuration, fast.LoopDuration)
			}
			if !approx(fast.StartOffset, slow.StartOffset/2) {
				t.Fatalf("%v @%v: offset %v -> %v, want halved", f, bpm, slow.StartOffset, fast.StartOffset)
			}
		}
	}
}

func TestTimingValid(t *testing.T) {
	if (Timing{}).Valid() {
		t.Fatal("zero timing should be invalid")
	}
	if (Timing{LoopDuration: math.NaN(), DriverRate: 1}).Valid() {
		t.Fatal("NaN timing should be invalid")
	}
	// Logarithm shifted past the right edge has a negative loop.
	if TimingFor(Logarithm, Params{Scale: 1, XShift: 20}, 0, 1, 60).Valid() {
		t.Fatal("negative loop should be invalid")
	}
	if !TimingFor(CubeRoot, Params{Scale: 1}, -16, 16, 60).Valid() {
		t.Fatal("cube root timing should be valid")
	}
}

func TestPhraseIsEightMeasures(t *testing.T) {
	if got := Phrase(60); got != 32 {
		t.Fatalf("phrase at 60 bpm = %v, want 32", got)
	}
	if got := Phrase(120); got != 16 {
		t.Fatalf("phrase at 120 bpm = %v, want 16", got)
	}
}
