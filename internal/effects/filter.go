package effects

import "math"

// Filter defaults for the per-voice low-pass.
const (
	DefaultCutoff = 1000.0
	DefaultQ      = 3.0
)

// LowPass is a resonant low-pass built from cascaded state-variable stages
// (trapezoidal integration). Each stage rolls off at 12 dB/oct; the default
// two stages give 24 dB/oct. The cutoff can be changed every sample.
type LowPass struct {
	sampleRate float64
	cutoff     float64
	q          float64
	a1, a2, a3 float64
	stages     [][2]svfState // [stage][channel]
}

type svfState struct {
	ic1, ic2 float64
}

// NewLowPass creates a low-pass with the given cutoff in Hz, resonance and
// slope in dB/oct (rounded to a multiple of 12, at least 12).
func NewLowPass(sampleRate int, cutoff, q float64, rolloffDB int) *LowPass {
	n := max(rolloffDB/12, 1)
	if q <= 0 {
		q = DefaultQ
	}
	f := &LowPass{
		sampleRate: float64(sampleRate),
		q:          q,
		stages:     make([][2]svfState, n),
	}
	f.cutoff = -1
	f.SetCutoff(cutoff)
	return f
}

// SetCutoff moves the cutoff. Values are held inside (10 Hz, 0.45·sr) so the
// filter stays stable; NaN is ignored.
func (f *LowPass) SetCutoff(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	hz = math.Min(math.Max(hz, 10), 0.45*f.sampleRate)
	if hz == f.cutoff {
		return
	}
	f.cutoff = hz
	g := math.Tan(math.Pi * hz / f.sampleRate)
	k := 1 / f.q
	f.a1 = 1 / (1 + g*(g+k))
	f.a2 = g * f.a1
	f.a3 = g * f.a2
}

// SetValue drives the cutoff from a modulation source.
func (f *LowPass) SetValue(v float64) { f.SetCutoff(v) }

// Cutoff returns the current cutoff in Hz.
func (f *LowPass) Cutoff() float64 { return f.cutoff }

func (f *LowPass) Process(l, r float32) (float32, float32) {
	x := [2]float64{float64(l), float64(r)}
	for s := range f.stages {
		for ch := range x {
			st := &f.stages[s][ch]
			v3 := x[ch] - st.ic2
			v1 := f.a1*st.ic1 + f.a2*v3
			v2 := st.ic2 + f.a2*st.ic1 + f.a3*v3
			st.ic1 = 2*v1 - st.ic1
			st.ic2 = 2*v2 - st.ic2
			x[ch] = v2
		}
	}
	return float32(x[0]), float32(x[1])
}

func (f *LowPass) Reset() {
	for s := range f.stages {
		f.stages[s] = [2]svfState{}
	}
}
