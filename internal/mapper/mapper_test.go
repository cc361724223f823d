package mapper

import (
	"math"
	"testing"

	"github.com/cbegin/graphsynth-go/internal/domain"
	"github.com/cbegin/graphsynth-go/internal/function"
)

func mustResolve(t *testing.T, f function.Family, p function.Params) (function.Function, domain.Window) {
	t.Helper()
	fn, err := function.Resolve(f, p)
	if err != nil {
		t.Fatalf("resolve %v: %v", f, err)
	}
	w, ok := domain.Compute(f, p)
	if !ok {
		t.Fatalf("degenerate window for %v %+v", f, p)
	}
	return fn, w
}

func TestYToFrequencyEqualTempered(t *testing.T) {
	base := YToFrequency(0)
	if want := 440 * math.Pow(2, -9.0/12); math.Abs(base-want) > 1e-9 {
		t.Fatalf("y=0 -> %v, want %v", base, want)
	}
	if got := YToFrequency(12); math.Abs(got-2*base) > 1e-9 {
		t.Fatalf("y=12 -> %v, want %v", got, 2*base)
	}
	step := math.Pow(2, 1.0/12)
	for y := -12; y < 12; y++ {
		lo, hi := YToFrequency(float64(y)), YToFrequency(float64(y+1))
		if math.Abs(hi/lo-step) > 1e-12 {
			t.Fatalf("ratio between %d and %d = %v, want %v", y, y+1, hi/lo, step)
		}
	}
}

func TestFrequencyMappingMonotonicInY(t *testing.T) {
	// ln is increasing, so frequency must be non-decreasing along the sweep
	// wherever y stays inside [-12, 12].
	fn, w := mustResolve(t, function.Logarithm, function.Params{Scale: 3})
	m := New(fn, w, Config{Mode: ModeFrequency})
	prev := 0.0
	for i := 0; i <= 400; i++ {
		x := float64(i)/200 - 1
		y := fn.Eval(m.Position(x))
		f := m.Map(x)
		if y < -12 || y > 12 {
			if f != Silent {
				t.Fatalf("x=%v y=%v: got %v, want silent", x, y, f)
			}
			continue
		}
		if f < prev {
			t.Fatalf("x=%v: frequency %v decreased from %v", x, f, prev)
		}
		prev = f
	}
}

func TestFrequencyFallbacks(t *testing.T) {
	nan := function.Function{
		Family: function.Quadratic,
		Eval:   func(float64) float64 { return math.NaN() },
	}
	m := New(nan, domain.Window{Start: -1, End: 1}, Config{Mode: ModeFrequency})
	if got := m.Map(0.3); got != FallbackFrequency {
		t.Fatalf("NaN curve: got %v, want %v", got, FallbackFrequency)
	}
	high := function.Function{
		Family: function.Quadratic,
		Eval:   func(float64) float64 { return 40 },
	}
	m = New(high, domain.Window{Start: -1, End: 1}, Config{Mode: ModeFrequency})
	if got := m.Map(0.3); got != Silent {
		t.Fatalf("out of range curve: got %v, want silent", got)
	}
}

func TestFrequencyToEdgeSilentPastWindow(t *testing.T) {
	fn, w := mustResolve(t, function.Exponential, function.Params{Scale: 1})
	m := New(fn, w, Config{Mode: ModeFrequency, ToEdge: true})
	// The window ends at ln(12) < 16, so the last stretch of the sweep
	// runs past it.
	if got := m.Map(1); got != Silent {
		t.Fatalf("x=1: got %v, want silent", got)
	}
	if got := m.Map(-1); got == Silent {
		t.Fatal("x=-1 should be audible")
	}
}

func TestPositionClampsDriverInput(t *testing.T) {
	m := New(function.Function{Family: function.Cubic, Eval: func(t float64) float64 { return t }},
		domain.Window{Start: -2, End: 6}, Config{Mode: ModeCutoff})
	cases := map[float64]float64{-5: -2, -1: -2, 0: 2, 1: 6, 7: 6, math.NaN(): 2}
	for x, want := range cases {
		if got := m.Position(x); got != want {
			t.Fatalf("Position(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestCutoffAlwaysInsideBand(t *testing.T) {
	for _, f := range function.Families {
		for _, p := range []function.Params{
			{Scale: 1}, {Scale: -3, XShift: 2, YShift: 5}, {Scale: 0.5, XShift: -7, YShift: -9},
		} {
			fn, err := function.Resolve(f, p)
			if err != nil {
				t.Fatal(err)
			}
			w, ok := domain.Compute(f, p)
			if !ok {
				continue
			}
			for _, band := range []Band{CutoffBand, PercussiveBand} {
				m := New(fn, w, Config{Mode: ModeCutoff, Band: band})
				for i := -60; i <= 60; i++ {
					x := float64(i) / 50
					v := m.Map(x)
					if v < band.Min || v > band.Max || math.IsNaN(v) {
						t.Fatalf("%v %+v x=%v: cutoff %v outside %+v", f, p, x, v, band)
					}
				}
			}
		}
	}
}

func TestCutoffRampHoldsAtBandFloor(t *testing.T) {
	p := function.Params{Scale: 1}
	fn, err := function.Resolve(function.Cubic, p)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := domain.Compute(function.Cubic, p)
	m := New(fn, w, Config{Mode: ModeCutoff, Band: PercussiveBand, Ramp: PercussiveRamp})
	cases := []struct {
		x, want float64
	}{
		{-1, 500}, // 200 clamps up to the floor
		{0, 500},  // 450 clamps up to the floor
		{1, 700},  // top of the ramp, inside the band
	}
	for _, tc := range cases {
		if got := m.Map(tc.x); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("x=%v: cutoff %v, want %v", tc.x, got, tc.want)
		}
	}
	for i := -50; i <= 50; i++ {
		if v := m.Map(float64(i) / 50); v < 500 || v > 700 {
			t.Fatalf("x=%v: cutoff %v outside [500, 700]", float64(i)/50, v)
		}
	}
}

func TestCutoffFlatFunctionReturnsMidpoint(t *testing.T) {
	flat := function.Function{Family: function.Cubic, Eval: func(float64) float64 { return 3 }}
	m := New(flat, domain.Window{Start: -1, End: 1}, Config{Mode: ModeCutoff})
	if got := m.Map(0.2); got != CutoffBand.Mid() {
		t.Fatalf("flat: got %v, want %v", got, CutoffBand.Mid())
	}
}

func TestCutoffLinearRescale(t *testing.T) {
	line := function.Function{Family: function.Cubic, Eval: func(t float64) float64 { return t }}
	m := New(line, domain.Window{Start: 0, End: 10}, Config{Mode: ModeCutoff})
	if got := m.Map(-1); got != 200 {
		t.Fatalf("start: %v", got)
	}
	if got := m.Map(1); got != 4000 {
		t.Fatalf("end: %v", got)
	}
	if got := m.Map(0); math.Abs(got-2100) > 1e-9 {
		t.Fatalf("middle: %v", got)
	}
}

func TestRingIsExponentialBetweenBandEdges(t *testing.T) {
	line := function.Function{Family: function.Exponential, Eval: func(t float64) float64 { return t }}
	m := New(line, domain.Window{Start: 0, End: 10}, Config{Mode: ModeRing})
	if got := m.Map(-1); math.Abs(got-1) > 1e-9 {
		t.Fatalf("start: %v", got)
	}
	if got := m.Map(1); math.Abs(got-2000) > 1e-9 {
		t.Fatalf("end: %v", got)
	}
	if got, want := m.Map(0), math.Sqrt(2000); math.Abs(got-want) > 1e-9 {
		t.Fatalf("middle: %v, want geometric mean %v", got, want)
	}
}

func TestReciprocalNeverEvaluatedAtPole(t *testing.T) {
	var calls []float64
	fn := function.Function{
		Family: function.Reciprocal,
		Params: function.Params{Scale: 1},
		Eval: func(t float64) float64 {
			calls = append(calls, t)
			return 1 / t
		},
	}
	w, ok := domain.Compute(function.Reciprocal, fn.Params)
	if !ok {
		t.Fatal("expected window")
	}
	m := New(fn, w, Config{Mode: ModeFrequency})

	// The window is symmetric about the pole; its midpoint maps to t=0.
	if got := m.Map(0); got != FallbackFrequency {
		t.Fatalf("pole: got %v, want fallback", got)
	}
	tab := NewTable(m.Map, DefaultTableSize)
	for i := -1000; i <= 1000; i++ {
		tab.Lookup(float64(i) / 1000)
	}
	if len(calls) == 0 {
		t.Fatal("expected evaluations")
	}
	for _, c := range calls {
		if c == 0 {
			t.Fatal("reciprocal evaluated at 0")
		}
	}
}

func TestPointReportsPositionAndValue(t *testing.T) {
	fn, w := mustResolve(t, function.Quadratic, function.Params{Scale: 1, YShift: 2})
	m := New(fn, w, Config{Mode: ModeCutoff})
	pos, y, ok := m.Point(0)
	if !ok || pos != 0 || y != 2 {
		t.Fatalf("Point(0) = %v, %v, %v", pos, y, ok)
	}
	rec, rw := mustResolve(t, function.Reciprocal, function.Params{Scale: 1})
	if _, _, ok := New(rec, rw, Config{}).Point(0); ok {
		t.Fatal("reciprocal pole reported a value")
	}
}
