package effects

import "math"

// Reverb is a Schroeder reverb: four parallel feedback combs feeding two
// series allpass stages. Each comb's feedback is chosen so its echoes fall
// 60 dB over the decay time.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float32
	decay   float64
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// Comb lengths relative to the base length; mutually detuned so the echo
// patterns do not line up.
var (
	combRatios    = [4]float64{1, 1.117, 1.271, 1.437}
	allpassRatios = [2]float64{0.347, 0.213}
)

// DefaultReverbDecay is the tail length of the per-voice reverb in seconds.
const DefaultReverbDecay = 1.5

// NewReverb creates a reverb with the given tail length in seconds and
// wet/dry mix in [0, 1].
func NewReverb(sampleRate int, decay float64, wet float32) *Reverb {
	if decay <= 0 {
		decay = DefaultReverbDecay
	}
	base := max(int(float64(sampleRate)*0.03), 10)
	r := &Reverb{wet: clamp(wet, 0, 1), decay: decay}
	for i, ratio := range combRatios {
		n := int(float64(base) * ratio)
		// Gain per pass such that decay/(n/sr) passes reach -60 dB.
		fb := math.Pow(10, -3*float64(n)/(decay*float64(sampleRate)))
		r.combs[i] = delayLine{buf: make([]float32, n), fb: clamp(float32(fb), 0, 0.98)}
	}
	for i, ratio := range allpassRatios {
		r.allpass[i] = delayLine{buf: make([]float32, max(int(float64(base)*ratio), 1)), fb: 0.5}
	}
	return r
}

// Decay returns the configured tail length in seconds.
func (r *Reverb) Decay() float64 { return r.decay }

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	in := (l + rr) * 0.5
	var tail float32
	for i := range r.combs {
		tail += r.combs[i].comb(in)
	}
	tail *= 0.25
	for i := range r.allpass {
		tail = r.allpass[i].diffuse(tail)
	}
	dry := 1 - r.wet
	return l*dry + tail*r.wet, rr*dry + tail*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].clear()
	}
	for i := range r.allpass {
		r.allpass[i].clear()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) diffuse(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) clear() {
	clear(d.buf)
	d.pos = 0
}
